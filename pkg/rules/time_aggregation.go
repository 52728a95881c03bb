package rules

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
)

// TimeDimension is the dimension aggregated by TimeAggregationRule. Its
// coordinate holds Unix seconds.
const TimeDimension = "time"

// TimeOperation is the statistic computed per period.
type TimeOperation string

const (
	TimeMin                TimeOperation = "MIN"
	TimeMax                TimeOperation = "MAX"
	TimeAverage            TimeOperation = "AVERAGE"
	TimeMedian             TimeOperation = "MEDIAN"
	TimeAdd                TimeOperation = "ADD"
	TimeStdev              TimeOperation = "STDEV"
	TimePercentile         TimeOperation = "PERCENTILE"
	TimeCountPeriods       TimeOperation = "COUNT_PERIODS"
	TimeMaxDurationPeriods TimeOperation = "MAX_DURATION_PERIODS"
	TimeAvgDurationPeriods TimeOperation = "AVG_DURATION_PERIODS"
)

var timeOperations = []TimeOperation{
	TimeMin, TimeMax, TimeAverage, TimeMedian, TimeAdd, TimeStdev, TimePercentile,
	TimeCountPeriods, TimeMaxDurationPeriods, TimeAvgDurationPeriods,
}

var percentilePattern = regexp.MustCompile(`^PERCENTILE\(\s*([0-9.]+)\s*\)$`)

// ParseTimeOperation parses an operation name such as "MAX" or "PERCENTILE(90)".
// The percentile is returned for PERCENTILE and is zero otherwise.
func ParseTimeOperation(s string) (TimeOperation, float64, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if m := percentilePattern.FindStringSubmatch(name); m != nil {
		p, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return "", 0, fmt.Errorf("invalid percentile in %q: %w", s, err)
		}
		return TimePercentile, p, nil
	}
	op := TimeOperation(name)
	if op == TimePercentile {
		return "", 0, fmt.Errorf("operation %q needs a percentile, e.g. PERCENTILE(90)", s)
	}
	if !slices.Contains(timeOperations, op) {
		return "", 0, fmt.Errorf("unsupported time operation %q (supported: %v)", s, timeOperations)
	}
	return op, 0, nil
}

// TimeScale is the period length used for aggregation.
type TimeScale string

const (
	TimeScaleYear  TimeScale = "year"
	TimeScaleMonth TimeScale = "month"
)

// ParseTimeScale parses "year" or "month" case-insensitively.
func ParseTimeScale(s string) (TimeScale, error) {
	switch ts := TimeScale(strings.ToLower(strings.TrimSpace(s))); ts {
	case TimeScaleYear, TimeScaleMonth:
		return ts, nil
	default:
		return "", fmt.Errorf("unsupported time scale %q (supported: year, month)", s)
	}
}

// Dimension returns the name of the aggregated dimension and coordinate.
func (s TimeScale) Dimension() string {
	return TimeDimension + "_" + string(s)
}

// TimeAggregationRule aggregates the time dimension into years or months.
// The result replaces "time" with "time_year" or "time_month", whose
// coordinate holds the start of each period in Unix seconds.
//
// The *_PERIODS operations treat the input as a 0/1 series: COUNT_PERIODS
// counts runs of ones, MAX_DURATION_PERIODS returns the longest run and
// AVG_DURATION_PERIODS the mean run length.
type TimeAggregationRule struct {
	Base
	Operation TimeOperation
	TimeScale TimeScale

	// Percentile is used by PERCENTILE and may be changed between runs
	Percentile float64
}

// NewTimeAggregationRule creates a time aggregation rule.
func NewTimeAggregationRule(name, input, output string, op TimeOperation, scale TimeScale) *TimeAggregationRule {
	return &TimeAggregationRule{
		Base: Base{
			RuleName:   name,
			InputNames: []string{input},
			OutputName: output,
		},
		Operation: op,
		TimeScale: scale,
	}
}

// SetPercentile changes the percentile used by PERCENTILE.
func (r *TimeAggregationRule) SetPercentile(p float64) {
	r.Percentile = p
}

// Kind returns KindArray.
func (r *TimeAggregationRule) Kind() Kind { return KindArray }

// Validate checks the operation, time scale and percentile.
func (r *TimeAggregationRule) Validate(logger Logger) bool {
	valid := r.validateBase(logger)
	if !slices.Contains(timeOperations, r.Operation) {
		logger.Error("unsupported time operation", "rule", r.RuleName, "operation", string(r.Operation))
		valid = false
	}
	if r.TimeScale != TimeScaleYear && r.TimeScale != TimeScaleMonth {
		logger.Error("unsupported time scale", "rule", r.RuleName, "time_scale", string(r.TimeScale))
		valid = false
	}
	if r.Operation == TimePercentile && (r.Percentile < 0 || r.Percentile > 100) {
		logger.Error("percentile must be between 0 and 100", "rule", r.RuleName, "percentile", r.Percentile)
		valid = false
	}
	return valid
}

// Execute aggregates input per period.
func (r *TimeAggregationRule) Execute(input *dataset.Variable, logger Logger) (*dataset.Variable, error) {
	coord, ok := input.Coords[TimeDimension]
	if !ok || !input.HasDim(TimeDimension) {
		return nil, fmt.Errorf("variable has no %q dimension with a coordinate", TimeDimension)
	}
	if len(coord.Dims) != 1 || coord.Dims[0] != TimeDimension {
		return nil, fmt.Errorf("coordinate %q must span only the %q dimension", coord.Name, TimeDimension)
	}

	starts, groups := r.periods(coord.Values)
	logger.Debug("aggregating time", "rule", r.RuleName, "operation", string(r.Operation),
		"time_scale", string(r.TimeScale), "periods", len(groups))

	dim := r.TimeScale.Dimension()
	out, err := input.GroupReduce(TimeDimension, dim, groups, r.reducer())
	if err != nil {
		return nil, err
	}
	c := dataset.NewIndexCoordinate(dim, starts)
	c.Attrs["units"] = "seconds since 1970-01-01 00:00:00"
	out.Coords[dim] = c
	return out, nil
}

// periods groups time positions by period. Periods are returned in
// chronological order with the Unix time of their start.
func (r *TimeAggregationRule) periods(times []float64) ([]float64, [][]int) {
	index := make(map[int64][]int)
	for i, t := range times {
		key := r.periodStart(t)
		index[key] = append(index[key], i)
	}

	keys := make([]int64, 0, len(index))
	for k := range index {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	starts := make([]float64, len(keys))
	groups := make([][]int, len(keys))
	for i, k := range keys {
		starts[i] = float64(k)
		groups[i] = index[k]
	}
	return starts, groups
}

func (r *TimeAggregationRule) periodStart(unix float64) int64 {
	t := time.Unix(int64(unix), 0).UTC()
	if r.TimeScale == TimeScaleMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Unix()
	}
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
}

func (r *TimeAggregationRule) reducer() dataset.ReduceFunc {
	skipNaN := func(fn func([]float64) float64) dataset.ReduceFunc {
		var buf []float64
		return func(values []float64) float64 {
			buf = dropNaN(buf, values)
			return fn(buf)
		}
	}

	switch r.Operation {
	case TimeMin:
		return skipNaN(minOf)
	case TimeMax:
		return skipNaN(maxOf)
	case TimeAverage:
		return skipNaN(meanOf)
	case TimeMedian:
		return skipNaN(medianOf)
	case TimeAdd:
		return skipNaN(sumOf)
	case TimeStdev:
		return skipNaN(stdevOf)
	case TimePercentile:
		p := r.Percentile
		return skipNaN(func(xs []float64) float64 { return percentileOf(xs, p) })
	case TimeCountPeriods:
		return func(values []float64) float64 { return float64(len(runLengths(values))) }
	case TimeMaxDurationPeriods:
		return func(values []float64) float64 {
			runs := runLengths(values)
			if len(runs) == 0 {
				return 0
			}
			return float64(slices.Max(runs))
		}
	case TimeAvgDurationPeriods:
		return func(values []float64) float64 {
			runs := runLengths(values)
			if len(runs) == 0 {
				return 0
			}
			total := 0
			for _, n := range runs {
				total += n
			}
			return float64(total) / float64(len(runs))
		}
	default:
		return func([]float64) float64 { return math.NaN() }
	}
}

// runLengths returns the length of every run of ones. Missing values end a run.
func runLengths(values []float64) []int {
	var runs []int
	current := 0
	for _, x := range values {
		if x == 1 {
			current++
			continue
		}
		if current > 0 {
			runs = append(runs, current)
			current = 0
		}
	}
	if current > 0 {
		runs = append(runs, current)
	}
	return runs
}

package processor

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"
)

// Attributes copied from the first input of a rule to its result.
var propagatedAttrs = []string{"location", "mesh"}

// RuleEvent describes one executed rule.
type RuleEvent struct {
	Rule     string
	Kind     rules.Kind
	Wave     int
	Duration time.Duration
	Warnings rules.CellWarnings
	Err      error
}

// Observer is notified after every rule execution, successful or not.
type Observer interface {
	ObserveRule(event RuleEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event RuleEvent)

// ObserveRule calls f(event).
func (f ObserverFunc) ObserveRule(event RuleEvent) { f(event) }

// Option configures a RuleProcessor.
type Option func(*RuleProcessor)

// WithObserver registers an observer for rule executions. Observers are
// notified in registration order.
func WithObserver(o Observer) Option {
	return func(p *RuleProcessor) {
		if o != nil {
			p.observers = append(p.observers, o)
		}
	}
}

// RuleProcessor orders rules into waves by data availability and executes
// them against a dataset. It is not safe for concurrent use.
type RuleProcessor struct {
	rules     []rules.Rule
	dataset   *dataset.Dataset
	waves      [][]rules.Rule
	unresolved []rules.Rule
	ready      bool
	observers []Observer
}

// New creates a processor for the given rules. The dataset supplies the
// variable and coordinate names available before any rule runs.
func New(rs []rules.Rule, ds *dataset.Dataset, opts ...Option) (*RuleProcessor, error) {
	if len(rs) == 0 {
		return nil, ErrNoRules
	}
	if ds == nil {
		return nil, ErrNilDataset
	}
	for i, r := range rs {
		if r == nil {
			return nil, fmt.Errorf("rule %d is nil", i)
		}
	}

	p := &RuleProcessor{
		rules:   slices.Clone(rs),
		dataset: ds,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Initialize resolves the execution waves. It returns false and logs the
// unresolved rules when some inputs can never become available.
func (p *RuleProcessor) Initialize(logger rules.Logger) bool {
	available := slices.Concat(p.dataset.Names(), p.dataset.CoordNames())

	waves, unresolved := ResolveWaves(p.rules, available)
	if len(unresolved) > 0 {
		names := make([]string, len(unresolved))
		for i, r := range unresolved {
			names[i] = r.Name()
		}
		logger.Warn(fmt.Sprintf("Some rules can not be resolved: %s", strings.Join(names, ", ")),
			"unresolved", names)
		p.waves = nil
		p.unresolved = unresolved
		p.ready = false
		return false
	}

	p.waves = waves
	p.unresolved = nil
	p.ready = true
	logger.Debug("resolved rule waves", "rules", len(p.rules), "waves", len(waves))
	return true
}

// Waves returns the execution plan computed by Initialize.
func (p *RuleProcessor) Waves() [][]rules.Rule {
	out := make([][]rules.Rule, len(p.waves))
	for i, w := range p.waves {
		out[i] = slices.Clone(w)
	}
	return out
}

// Unresolved returns the rules the last Initialize could not place in a wave.
func (p *RuleProcessor) Unresolved() []rules.Rule {
	return slices.Clone(p.unresolved)
}

// ResolveWaves groups rules into waves. Every rule in a wave only reads names
// from available or from outputs of earlier waves. Within a wave rules keep
// their original order. Rules that can never run are returned as unresolved,
// in their original order; this covers cycles and rules reading their own
// output, even when that name is already available.
func ResolveWaves(rs []rules.Rule, available []string) (waves [][]rules.Rule, unresolved []rules.Rule) {
	known := make(map[string]bool, len(available)+len(rs))
	for _, name := range available {
		known[name] = true
	}

	remaining := slices.Clone(rs)
	for len(remaining) > 0 {
		var wave, rest []rules.Rule
		for _, r := range remaining {
			if inputsAvailable(r, known) {
				wave = append(wave, r)
			} else {
				rest = append(rest, r)
			}
		}
		if len(wave) == 0 {
			return waves, remaining
		}

		waves = append(waves, wave)
		for _, r := range wave {
			known[r.OutputVariableName()] = true
		}
		remaining = rest
	}
	return waves, nil
}

func inputsAvailable(r rules.Rule, known map[string]bool) bool {
	if slices.Contains(r.InputVariableNames(), r.OutputVariableName()) {
		return false
	}
	for _, name := range r.InputVariableNames() {
		if !known[name] {
			return false
		}
	}
	return true
}

// ProcessRules executes every wave against ds and returns it. Results are
// written into ds in place under each rule's output name.
func (p *RuleProcessor) ProcessRules(ds *dataset.Dataset, logger rules.Logger) (*dataset.Dataset, error) {
	if !p.ready {
		return nil, ErrNotInitialized
	}
	if ds == nil {
		return nil, ErrNilDataset
	}

	total := 0
	for _, w := range p.waves {
		total += len(w)
	}

	n := 0
	for wave, rs := range p.waves {
		for _, r := range rs {
			n++
			logger.Info(fmt.Sprintf("Starting rule %d/%d: %s", n, total, r.Name()),
				"wave", wave+1, "kind", r.Kind().String())

			start := time.Now()
			warnings, err := p.executeRule(r, ds, logger)
			p.notify(RuleEvent{
				Rule:     r.Name(),
				Kind:     r.Kind(),
				Wave:     wave + 1,
				Duration: time.Since(start),
				Warnings: warnings,
				Err:      err,
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return ds, nil
}

func (p *RuleProcessor) notify(event RuleEvent) {
	for _, o := range p.observers {
		o.ObserveRule(event)
	}
}

func (p *RuleProcessor) executeRule(r rules.Rule, ds *dataset.Dataset, logger rules.Logger) (rules.CellWarnings, error) {
	names := r.InputVariableNames()
	inputs := make(map[string]*dataset.Variable, len(names))
	for _, name := range names {
		v, ok := ds.Get(name)
		if !ok {
			return rules.CellWarnings{}, &MissingVariableError{Variable: name, Rule: r.Name()}
		}
		inputs[name] = v
	}

	result, warnings, err := dispatch(r, names, inputs, logger)
	if err != nil {
		return warnings, err
	}

	var first *dataset.Variable
	if len(names) > 0 {
		first = inputs[names[0]]
	}
	stampMetadata(result, first, r.OutputVariableName())

	ds.Set(r.OutputVariableName(), result)
	for _, name := range slices.Sorted(maps.Keys(result.Coords)) {
		if ds.AddCoordIfAbsent(result.Coords[name]) {
			logger.Debug("added coordinate from rule result", "rule", r.Name(), "coordinate", name)
		}
	}
	return warnings, nil
}

// dispatch runs r with the shape its Kind selects. Multi-input shapes come
// first so that a rule implementing several shape interfaces is dispatched
// by its declared kind.
func dispatch(r rules.Rule, names []string, inputs map[string]*dataset.Variable, logger rules.Logger) (*dataset.Variable, rules.CellWarnings, error) {
	var none rules.CellWarnings

	switch r.Kind() {
	case rules.KindMultiArray:
		rule, ok := r.(rules.MultiArrayRule)
		if !ok {
			break
		}
		out, err := rule.ExecuteMulti(inputs, logger)
		if err != nil {
			return nil, none, &RuleExecutionError{Rule: r.Name(), Message: "execution failed", Cause: err}
		}
		return out, none, nil

	case rules.KindMultiCell:
		rule, ok := r.(rules.MultiCellRule)
		if !ok {
			break
		}
		out, err := processMultiCell(rule, names, inputs, logger)
		return out, none, err

	case rules.KindArray:
		rule, ok := r.(rules.ArrayRule)
		if !ok {
			break
		}
		if len(names) != 1 {
			return nil, none, &RuleExecutionError{
				Rule:    r.Name(),
				Message: "Array based rule only supports one input array.",
			}
		}
		out, err := rule.Execute(inputs[names[0]], logger)
		if err != nil {
			return nil, none, &RuleExecutionError{Rule: r.Name(), Message: "execution failed", Cause: err}
		}
		return out, none, nil

	case rules.KindCell:
		rule, ok := r.(rules.CellRule)
		if !ok || len(names) == 0 {
			break
		}
		out, warnings := processCells(rule, inputs[names[0]], logger)
		return out, warnings, nil
	}

	return nil, none, &RuleExecutionError{
		Rule:    r.Name(),
		Message: fmt.Sprintf("Can not execute rule %s.", r.Name()),
	}
}

// stampMetadata copies location attributes from the first input and names
// the result after the output variable.
func stampMetadata(result, first *dataset.Variable, output string) {
	if result.Attrs == nil {
		result.Attrs = make(map[string]string)
	}
	if first != nil {
		for _, key := range propagatedAttrs {
			if val, ok := first.Attrs[key]; ok {
				result.Attrs[key] = val
			}
		}
	}
	result.Attrs["long_name"] = output
	result.Attrs["standard_name"] = output
}

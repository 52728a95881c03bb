package model

import (
	"fmt"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/processor"
	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"
)

// RuleBasedModel runs a list of rules over the merged input datasets.
type RuleBasedModel struct {
	name      string
	status    Status
	inputs    []*dataset.Dataset
	rules     []rules.Rule
	opts      []processor.Option
	working   *dataset.Dataset
	processor *processor.RuleProcessor
}

// NewRuleBasedModel creates a model. Processor options such as observers
// are passed on when the processor is built during Initialize.
func NewRuleBasedModel(name string, inputs []*dataset.Dataset, rs []rules.Rule, opts ...processor.Option) *RuleBasedModel {
	return &RuleBasedModel{
		name:   name,
		status: StatusCreated,
		inputs: inputs,
		rules:  rs,
		opts:   opts,
	}
}

func (m *RuleBasedModel) Name() string       { return m.name }
func (m *RuleBasedModel) Status() Status     { return m.status }
func (m *RuleBasedModel) SetStatus(s Status) { m.status = s }

// Rules returns the configured rules.
func (m *RuleBasedModel) Rules() []rules.Rule { return m.rules }

// Validate checks that there is input data and that every rule is valid.
// All rules are validated so every problem ends up in the log.
func (m *RuleBasedModel) Validate(logger rules.Logger) bool {
	valid := true
	if len(m.inputs) == 0 {
		logger.Error(fmt.Sprintf("Model %s has no input datasets", m.name))
		valid = false
	}
	if len(m.rules) == 0 {
		logger.Error(fmt.Sprintf("Model %s has no rules", m.name))
		valid = false
	}
	for _, r := range m.rules {
		if !r.Validate(logger) {
			logger.Error(fmt.Sprintf("Rule %s is not valid", r.Name()))
			valid = false
		}
	}
	return valid
}

// Initialize merges the input datasets and orders the rules. Variables
// present in more than one input keep the value of the first.
func (m *RuleBasedModel) Initialize(logger rules.Logger) error {
	if len(m.inputs) == 0 {
		return ErrNoInputData
	}

	working := m.inputs[0].Clone()
	for _, ds := range m.inputs[1:] {
		working.Merge(ds)
	}

	p, err := processor.New(m.rules, working, m.opts...)
	if err != nil {
		return err
	}
	if !p.Initialize(logger) {
		unresolved := p.Unresolved()
		names := make([]string, len(unresolved))
		for i, r := range unresolved {
			names[i] = r.Name()
		}
		return &UnresolvedRulesError{Model: m.name, Rules: names}
	}

	m.working = working
	m.processor = p
	return nil
}

// Execute runs all rules.
func (m *RuleBasedModel) Execute(logger rules.Logger) error {
	if m.processor == nil {
		return processor.ErrNotInitialized
	}
	_, err := m.processor.ProcessRules(m.working, logger)
	return err
}

// Finalize logs a summary of the output dataset.
func (m *RuleBasedModel) Finalize(logger rules.Logger) error {
	if m.working == nil {
		return processor.ErrNotInitialized
	}
	logger.Debug(fmt.Sprintf("Model %s produced %d variables", m.name, m.working.Len()))
	return nil
}

// OutputDataset returns the working dataset, or nil before Initialize.
func (m *RuleBasedModel) OutputDataset() *dataset.Dataset {
	return m.working
}

// WaveCount returns the number of execution waves, or 0 before Initialize.
func (m *RuleBasedModel) WaveCount() int {
	if m.processor == nil {
		return 0
	}
	return len(m.processor.Waves())
}

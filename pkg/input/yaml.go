package input

import (
	"gopkg.in/yaml.v3"
)

// yamlInput is the intermediate structure of an input file.
type yamlInput struct {
	Version    string          `yaml:"version"`
	InputData  []yamlInputData `yaml:"input-data"`
	OutputData *yamlOutputData `yaml:"output-data"`
	Rules      []yaml.Node     `yaml:"rules"` // each a single-key mapping: <type>: {...}

	node *yaml.Node
}

type yamlInputData struct {
	Dataset *yamlDataset `yaml:"dataset"`
}

type yamlDataset struct {
	Filename        string            `yaml:"filename"`
	VariableMapping map[string]string `yaml:"variable_mapping"`
}

type yamlOutputData struct {
	Filename          string   `yaml:"filename"`
	SaveOnlyVariables []string `yaml:"save_only_variables"`
}

// yamlRule holds the union of all rule fields. Which fields are allowed and
// required depends on the rule type.
type yamlRule struct {
	Name               string    `yaml:"name"`
	Description        string    `yaml:"description"`
	InputVariable      string    `yaml:"input_variable"`
	InputVariables     []string  `yaml:"input_variables"`
	OutputVariable     string    `yaml:"output_variable"`
	Multipliers        []float64 `yaml:"multipliers"`
	LimitResponseTable [][]any   `yaml:"limit_response_table"`
	InputValues        []float64 `yaml:"input_values"`
	OutputValues       []float64 `yaml:"output_values"`
	Operation          string    `yaml:"operation"`
	IgnoreNaN          bool      `yaml:"ignore_nan"`
	CriteriaTable      [][]any   `yaml:"criteria_table"`
	Formula            string    `yaml:"formula"`
	LayerNumber        int       `yaml:"layer_number"`
	LayerDimension     string    `yaml:"layer_dimension"`
	AxisName           string    `yaml:"axis_name"`
	ElementIndex       int       `yaml:"element_index"`
	BedLevelVariable   string    `yaml:"bed_level_variable"`
	WaterLevelVariable string    `yaml:"water_level_variable"`
	InterfacesVariable string    `yaml:"interfaces_variable"`
	TimeScale          string    `yaml:"time_scale"`

	keys map[string]*yaml.Node // key nodes for line numbers
	node *yaml.Node
}

// parseYAMLNode parses raw YAML into a node tree. Errors are syntax errors.
func parseYAMLNode(data []byte) (*yaml.Node, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// decodeInput decodes a node tree into the intermediate structure. Errors
// are type mismatches between the document and the expected layout.
func decodeInput(node *yaml.Node) (*yamlInput, error) {
	var in yamlInput
	if err := node.Decode(&in); err != nil {
		return nil, err
	}
	in.node = node
	return &in, nil
}

// mappingKeys returns the key nodes of a mapping node by name.
func mappingKeys(node *yaml.Node) map[string]*yaml.Node {
	keys := make(map[string]*yaml.Node)
	if node == nil || node.Kind != yaml.MappingNode {
		return keys
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys[node.Content[i].Value] = node.Content[i]
	}
	return keys
}

// rootMapping returns the top-level mapping of a document node.
func rootMapping(doc *yaml.Node) *yaml.Node {
	if doc != nil && doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

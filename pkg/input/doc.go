// Package input parses EcoImpact input files.
//
// An input file is a YAML document naming the input datasets, the output
// dataset and an ordered list of rules:
//
//	version: 0.1.0
//	input-data:
//	  - dataset:
//	      filename: ./data/model_*.json
//	      variable_mapping:
//	        mesh2d_s1: water_level
//	output-data:
//	  filename: ./out/result.json
//	rules:
//	  - multiply_rule:
//	      name: depth in cm
//	      input_variable: water_depth
//	      multipliers: [100.0]
//	      output_variable: water_depth_cm
//
// Parsing happens in two stages. The document is first decoded into
// intermediate structures that keep their yaml.Node positions, then a
// builder constructs the rules and collects every problem it finds into an
// ErrorList with line numbers, a few lines of context and, where possible,
// a suggestion for misspelled field or rule type names.
package input

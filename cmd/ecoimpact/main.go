// EcoImpact evaluates ecological impact rules over gridded model output.
//
// An input file names the input datasets, the output dataset and an ordered
// list of rules. EcoImpact orders the rules by data availability, runs them
// and writes the derived indicator variables.
//
// Usage:
//
//	# Run a model
//	ecoimpact run input.yaml
//
//	# Re-run whenever the input file or its data change
//	ecoimpact run input.yaml --watch
//
//	# Check an input file without running it
//	ecoimpact validate input.yaml
//
//	# Show the run history
//	ecoimpact runs list --status failed
//
//	# Apply the retention policy to the run history
//	ecoimpact runs prune
//
//	# Show version information
//	ecoimpact version
package main

func main() {
	Execute()
}

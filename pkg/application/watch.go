package application

import (
	"path/filepath"
	"slices"
	"strings"
)

// WatchTargets returns the paths that should trigger a re-run of inputPath
// in watch mode, and a function reporting the output files of the model so
// that writing them does not trigger another run.
func (a *Application) WatchTargets(inputPath string) ([]string, func(path string) bool, error) {
	md, err := a.Parse(inputPath)
	if err != nil {
		return nil, nil, err
	}

	paths := []string{inputPath}
	for _, dd := range md.Datasets {
		target := dd.Filename
		if isPattern(target) {
			target = filepath.Dir(target)
		}
		if !slices.Contains(paths, target) {
			paths = append(paths, target)
		}
	}

	output := filepath.Clean(md.Output.Filename)
	ext := filepath.Ext(output)
	partitioned := strings.TrimSuffix(output, ext) + "_*" + ext
	isOutput := func(path string) bool {
		path = filepath.Clean(path)
		if path == output {
			return true
		}
		ok, _ := filepath.Match(partitioned, path)
		return ok
	}
	return paths, isOutput, nil
}

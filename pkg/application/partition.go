package application

import (
	"fmt"
	"path/filepath"
	"strings"
)

const globChars = "*?["

// partition is one input file matched by the first dataset's filename.
type partition struct {
	// Path is the dataset file of the partition
	Path string

	// Suffix is the text matched by the pattern's wildcards, empty when the
	// filename holds no pattern
	Suffix string
}

// isPattern reports whether name holds glob metacharacters.
func isPattern(name string) bool {
	return strings.ContainsAny(filepath.Base(name), globChars)
}

// expandPartitions matches pattern against the file system. A filename
// without metacharacters is a single unpartitioned input. Matches are
// returned in lexical order.
func expandPartitions(pattern string) ([]partition, error) {
	if !isPattern(pattern) {
		return []partition{{Path: pattern}}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatchingFiles, pattern)
	}

	parts := make([]partition, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, partition{Path: m, Suffix: partitionSuffix(pattern, m)})
	}
	return parts, nil
}

// partitionSuffix strips the literal text before the first and after the
// last metacharacter of the pattern's base name from the matched base name.
// When nothing is left the matched file's stem is used.
func partitionSuffix(pattern, match string) string {
	patBase := filepath.Base(pattern)
	base := filepath.Base(match)

	first := strings.IndexAny(patBase, globChars)
	last := strings.LastIndexAny(patBase, "*?]")
	prefix := patBase[:first]
	suffix := ""
	if last >= first && last+1 <= len(patBase) {
		suffix = patBase[last+1:]
	}

	s := strings.TrimSuffix(strings.TrimPrefix(base, prefix), suffix)
	if s == "" || len(prefix)+len(suffix) > len(base) {
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return s
}

// outputPath returns the output file of a partition: the suffix is appended
// to the stem of the configured output filename.
func outputPath(output, suffix string) string {
	if suffix == "" {
		return output
	}
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "_" + suffix + ext
}

package input

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ErrorType categorizes input file problems.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // YAML syntax error
	ErrorTypeStructural ErrorType = "structural" // Missing, unknown or mistyped fields
	ErrorTypeValidation ErrorType = "validation" // Field values that cannot form a valid rule
	ErrorTypeIO         ErrorType = "io"         // File I/O error
)

// Error describes one problem in an input file.
type Error struct {
	Type       ErrorType
	Message    string
	File       string
	Line       int // 1-indexed, 0 when unknown
	Column     int // 1-indexed, 0 when unknown
	Context    string
	Suggestion string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", e.Type, e.Message))

	if e.File != "" {
		switch {
		case e.Line > 0 && e.Column > 0:
			sb.WriteString(fmt.Sprintf("  --> %s:%d:%d\n", e.File, e.Line, e.Column))
		case e.Line > 0:
			sb.WriteString(fmt.Sprintf("  --> %s:%d\n", e.File, e.Line))
		default:
			sb.WriteString(fmt.Sprintf("  --> %s\n", e.File))
		}
	}

	if e.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// ErrorList collects every problem found in one input file.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates an empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*Error, 0)}
}

// Add appends an error.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// HasErrors reports whether any error was added.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", el.Count()))
	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToError returns nil for an empty list and the list itself otherwise.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// addContext fills in the source lines surrounding the error location.
// Errors without a readable file or line are returned unchanged.
func addContext(err *Error, contextLines int) *Error {
	if err.File == "" || err.Line <= 0 {
		return err
	}

	f, openErr := os.Open(err.File)
	if openErr != nil {
		return err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if scanner.Err() != nil || err.Line > len(lines) {
		return err
	}

	errorLine := err.Line - 1
	start := max(errorLine-contextLines, 0)
	end := min(errorLine+contextLines, len(lines)-1)
	width := len(fmt.Sprintf("%d", end+1))

	var sb strings.Builder
	for i := start; i <= end; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, width, i+1, lines[i]))
	}
	err.Context = sb.String()
	return err
}

// suggestName proposes the closest valid name for an unknown one.
func suggestName(unknown string, valid []string) string {
	if len(valid) == 0 {
		return ""
	}

	best, bestDistance := "", 1000
	for _, name := range valid {
		if d := levenshteinDistance(unknown, name); d < bestDistance {
			best, bestDistance = name, d
		}
	}
	if bestDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	return fmt.Sprintf("Valid names: %s", strings.Join(valid, ", "))
}

func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}

package input

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"
)

// Parser parses input files into ModelData.
type Parser struct {
	maxFileSize  int64  // Maximum file size in bytes (default: 10MB)
	costLimit    uint64 // CEL cost limit for formula rules
	contextLines int    // Source lines shown around an error
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize:  10 * 1024 * 1024, // 10MB
		costLimit:    rules.DefaultFormulaCostLimit,
		contextLines: 2,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithFormulaCostLimit sets the evaluation cost limit of formula rules.
func (p *Parser) WithFormulaCostLimit(limit uint64) *Parser {
	p.costLimit = limit
	return p
}

// Parse parses the input file at path. Relative dataset and output paths are
// resolved against the directory of the input file.
//
// The returned error is an *Error for I/O and syntax problems and an
// *ErrorList when the document is well-formed YAML but describes an
// invalid model.
func (p *Parser) Parse(path string) (*ModelData, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &Error{
			Type:    ErrorTypeIO,
			Message: fmt.Sprintf("Failed to access file: %v", err),
			File:    path,
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &Error{
			Type:    ErrorTypeIO,
			Message: fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			File:    path,
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{
			Type:    ErrorTypeIO,
			Message: fmt.Sprintf("Failed to read file: %v", err),
			File:    path,
		}
	}

	md, err := p.parse(data, path)
	if err != nil {
		var errList *ErrorList
		if errors.As(err, &errList) {
			for i, e := range errList.Errors {
				errList.Errors[i] = addContext(e, p.contextLines)
			}
		}
		return nil, err
	}

	md.resolvePaths(filepath.Dir(path))
	return md, nil
}

// ParseBytes parses input YAML from a byte slice. sourcePath is used for
// error locations and the model name; paths are left as written.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ModelData, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &Error{
			Type:    ErrorTypeIO,
			Message: fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			File:    sourcePath,
		}
	}
	return p.parse(data, sourcePath)
}

func (p *Parser) parse(data []byte, sourcePath string) (*ModelData, error) {
	node, err := parseYAMLNode(data)
	if err != nil {
		return nil, &Error{
			Type:       ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			File:       sourcePath,
			Line:       1,
			Column:     1,
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	b := newBuilder(sourcePath, p.costLimit)

	in, err := decodeInput(node)
	if err != nil {
		b.add(ErrorTypeStructural, rootMapping(node), "", "Invalid input file layout: %s", decodeMessage(err))
		return nil, b.errors
	}

	md := b.buildModelData(in, modelName(sourcePath))
	if err := b.errors.ToError(); err != nil {
		return nil, err
	}
	return md, nil
}

// modelName derives a model name from the input file name.
func modelName(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "model"
	}
	return name
}

func (md *ModelData) resolvePaths(dir string) {
	for i := range md.Datasets {
		md.Datasets[i].Filename = resolve(dir, md.Datasets[i].Filename)
	}
	md.Output.Filename = resolve(dir, md.Output.Filename)
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

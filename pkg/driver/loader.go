package driver

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"pywasm/compiler-go/pkg/ast"
	"pywasm/compiler-go/pkg/compiler"
	"pywasm/compiler-go/pkg/parser"
)

// Source is one loaded and lowered source file.
type Source struct {
	Path    string
	Text    []byte
	Program *ast.Program
}

// Loader reads and lowers source files. It owns a tree-sitter parser and is
// not safe for concurrent use.
type Loader struct {
	parser *parser.ModuleParser
}

func NewLoader() (*Loader, error) {
	p, err := parser.NewModuleParser()
	if err != nil {
		return nil, err
	}
	return &Loader{parser: p}, nil
}

func (l *Loader) Close() {
	if l == nil || l.parser == nil {
		return
	}
	l.parser.Close()
	l.parser = nil
}

// Load reads path and lowers it. Lowering failures are returned unwrapped so
// callers can inspect the *parser.ParseError.
func (l *Loader) Load(path string) (*Source, error) {
	if l == nil || l.parser == nil {
		return nil, errors.New("loader: closed")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loader: resolve %s", path)
	}
	text, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrap(err, "loader")
	}
	program, err := l.parser.ParseProgram(text)
	if err != nil {
		return nil, err
	}
	return &Source{Path: abs, Text: text, Program: program}, nil
}

// BuildResult is what Build produced and where it went.
type BuildResult struct {
	Manifest *Manifest
	Revision string
	Result   *compiler.Result
}

// Build compiles the manifest's entry file and writes the selected artifacts
// into its output directory.
func Build(manifest *Manifest) (*BuildResult, error) {
	if manifest == nil {
		return nil, errors.New("build: nil manifest")
	}
	loader, err := NewLoader()
	if err != nil {
		return nil, err
	}
	defer loader.Close()

	source, err := loader.Load(manifest.Entry)
	if err != nil {
		return nil, err
	}
	var revision string
	if manifest.StampRevision {
		revision, err = SourceRevision(source.Path)
		if err != nil {
			return nil, err
		}
	}
	result, err := compiler.New(compiler.Options{
		Name:     manifest.ArtifactName(),
		Emit:     manifest.Emit,
		Revision: revision,
	}).Compile(source.Program)
	if err != nil {
		return nil, err
	}
	if err := result.Write(manifest.Output); err != nil {
		return nil, err
	}
	return &BuildResult{Manifest: manifest, Revision: revision, Result: result}, nil
}

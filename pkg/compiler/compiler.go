package compiler

import (
	"github.com/pkg/errors"

	"pywasm/compiler-go/pkg/ast"
	"pywasm/compiler-go/pkg/parser"
	"pywasm/compiler-go/pkg/typechecker"
	"pywasm/compiler-go/pkg/wasm"
)

// Artifact names an output format.
type Artifact string

const (
	ArtifactWAT  Artifact = "wat"
	ArtifactWasm Artifact = "wasm"
)

type Options struct {
	// Name is the base file name of written artifacts. Defaults to "module".
	Name string
	// Emit selects the files Result.Write produces. Empty means both.
	Emit []Artifact
	// Revision, when set, is embedded as the pywasm.revision custom section.
	Revision string
	// Env is the base global environment. Nil means typechecker.DefaultGlobalEnv.
	Env *typechecker.GlobalEnv
}

type Result struct {
	// Program is the checked program with identity comparisons folded.
	Program *ast.Program
	Module  *wasm.Module
	Text    string
	Binary  []byte
	Files   map[string][]byte
}

type Compiler struct {
	opts Options
}

func New(opts Options) *Compiler {
	if opts.Name == "" {
		opts.Name = "module"
	}
	if len(opts.Emit) == 0 {
		opts.Emit = []Artifact{ArtifactWAT, ArtifactWasm}
	}
	if opts.Env == nil {
		opts.Env = typechecker.DefaultGlobalEnv()
	}
	return &Compiler{opts: opts}
}

// CompileSource runs the whole pipeline over Python source text.
func (c *Compiler) CompileSource(source []byte) (*Result, error) {
	program, err := parseSource(source)
	if err != nil {
		return nil, err
	}
	return c.Compile(program)
}

// Compile checks and lowers an unchecked program. The first failure aborts
// the compilation and is returned as an *Error.
func (c *Compiler) Compile(program *ast.Program) (*Result, error) {
	checked, env, err := c.check(program)
	if err != nil {
		return nil, err
	}
	folded, err := typechecker.FoldIdentity(checked)
	if err != nil {
		return nil, classify(StageCheck, err)
	}

	mod, err := newGenerator(c.opts).generate(folded, env)
	if err != nil {
		return nil, classify(StageCodegen, err)
	}
	binary, err := mod.Encode()
	if err != nil {
		return nil, classify(StageCodegen, errors.Wrap(err, "compiler: encode module"))
	}
	result := &Result{
		Program: folded,
		Module:  mod,
		Text:    mod.Text(),
		Binary:  binary,
		Files:   make(map[string][]byte),
	}
	for _, artifact := range c.opts.Emit {
		switch artifact {
		case ArtifactWAT:
			result.Files[c.opts.Name+".wat"] = []byte(result.Text)
		case ArtifactWasm:
			result.Files[c.opts.Name+".wasm"] = binary
		default:
			return nil, classify(StageCodegen, errors.Errorf("compiler: unknown artifact %q", artifact))
		}
	}
	return result, nil
}

// CheckSource lowers and typechecks source without generating code.
func (c *Compiler) CheckSource(source []byte) (*ast.Program, error) {
	program, err := parseSource(source)
	if err != nil {
		return nil, err
	}
	checked, _, err := c.check(program)
	return checked, err
}

func (c *Compiler) check(program *ast.Program) (*ast.Program, *typechecker.GlobalEnv, error) {
	if program == nil {
		return nil, nil, classify(StageCheck, errors.New("compiler: missing program"))
	}
	checked, env, err := typechecker.NewWithEnv(c.opts.Env).CheckProgram(program)
	if err != nil {
		return nil, nil, classify(StageCheck, err)
	}
	return checked, env, nil
}

func parseSource(source []byte) (*ast.Program, error) {
	program, err := parser.ParseSource(source)
	if err != nil {
		return nil, classify(StageParse, err)
	}
	return program, nil
}

func (r *Result) Write(dir string) error {
	if r == nil {
		return errors.New("compiler: nil result")
	}
	return writeFiles(dir, r.Files)
}

package typechecker

import "pywasm/compiler-go/pkg/ast"

// FunctionSignature is the callable shape recorded for a function name.
type FunctionSignature struct {
	Name   string
	Params []*ast.TypedVariable
	Return ast.Type
	// Host marks functions supplied as module imports rather than compiled bodies.
	Host bool
}

func (s FunctionSignature) Arity() int { return len(s.Params) }

// GlobalEnv maps global variable names and function names, which share one
// namespace. Names are kept in declaration order.
type GlobalEnv struct {
	globals   map[string]ast.Type
	functions map[string]FunctionSignature
	order     []string
}

func NewGlobalEnv() *GlobalEnv {
	return &GlobalEnv{
		globals:   make(map[string]ast.Type),
		functions: make(map[string]FunctionSignature),
	}
}

// DefaultGlobalEnv returns the host functions every program may call.
func DefaultGlobalEnv() *GlobalEnv {
	env := NewGlobalEnv()
	num := ast.TypeNum
	host := func(name string, params ...string) {
		vars := make([]*ast.TypedVariable, 0, len(params))
		for _, p := range params {
			vars = append(vars, ast.NewTypedVariable(p, num, nil))
		}
		env.declareFunction(FunctionSignature{Name: name, Params: vars, Return: num, Host: true})
	}
	host("abs", "x")
	host("max", "a", "b")
	host("min", "a", "b")
	host("pow", "base", "exp")
	return env
}

// Clone returns an independent copy. Checking never mutates the caller's environment.
func (g *GlobalEnv) Clone() *GlobalEnv {
	clone := NewGlobalEnv()
	if g == nil {
		return clone
	}
	for name, typ := range g.globals {
		clone.globals[name] = typ
	}
	for name, sig := range g.functions {
		clone.functions[name] = sig
	}
	clone.order = append(clone.order, g.order...)
	return clone
}

func (g *GlobalEnv) Has(name string) bool {
	if name == "print" {
		return true
	}
	_, isGlobal := g.globals[name]
	_, isFunction := g.functions[name]
	return isGlobal || isFunction
}

func (g *GlobalEnv) Global(name string) (ast.Type, bool) {
	typ, ok := g.globals[name]
	return typ, ok
}

func (g *GlobalEnv) Function(name string) (FunctionSignature, bool) {
	sig, ok := g.functions[name]
	return sig, ok
}

// GlobalNames lists global variables in declaration order.
func (g *GlobalEnv) GlobalNames() []string {
	names := make([]string, 0, len(g.globals))
	for _, name := range g.order {
		if _, ok := g.globals[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// FunctionNames lists functions in declaration order.
func (g *GlobalEnv) FunctionNames() []string {
	names := make([]string, 0, len(g.functions))
	for _, name := range g.order {
		if _, ok := g.functions[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

func (g *GlobalEnv) declareGlobal(name string, typ ast.Type) {
	g.globals[name] = typ
	g.order = append(g.order, name)
}

func (g *GlobalEnv) declareFunction(sig FunctionSignature) {
	g.functions[sig.Name] = sig
	g.order = append(g.order, sig.Name)
}

// localEnv is the scope of one function body, or of the top-level block when
// topLevel is set.
type localEnv struct {
	vars        map[string]ast.Type
	expectedRet ast.Type
	topLevel    bool
	// loopDepth is reserved for break/continue.
	loopDepth int
}

func newFunctionEnv(ret ast.Type) *localEnv {
	return &localEnv{vars: make(map[string]ast.Type), expectedRet: ret}
}

func newTopLevelEnv() *localEnv {
	return &localEnv{vars: make(map[string]ast.Type), expectedRet: ast.TypeNone, topLevel: true}
}

func (l *localEnv) lookup(name string) (ast.Type, bool) {
	typ, ok := l.vars[name]
	return typ, ok
}

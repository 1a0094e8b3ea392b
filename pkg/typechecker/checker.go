package typechecker

import (
	"fmt"

	"pywasm/compiler-go/pkg/ast"
)

// Checker typechecks programs against a base global environment.
type Checker struct {
	base *GlobalEnv
}

// New constructs a checker seeded with DefaultGlobalEnv.
func New() *Checker {
	return &Checker{base: DefaultGlobalEnv()}
}

// NewWithEnv constructs a checker over a caller-supplied base environment.
// The base is cloned per check and never mutated.
func NewWithEnv(base *GlobalEnv) *Checker {
	if base == nil {
		base = NewGlobalEnv()
	}
	return &Checker{base: base}
}

// Check typechecks program against base (nil means an empty environment).
func Check(base *GlobalEnv, program *ast.Program) (*ast.Program, *GlobalEnv, error) {
	return NewWithEnv(base).CheckProgram(program)
}

// CheckProgram returns the annotated program together with the augmented
// global environment, which includes implicit top-level globals.
func (c *Checker) CheckProgram(program *ast.Program) (*ast.Program, *GlobalEnv, error) {
	if program == nil {
		return nil, nil, fmt.Errorf("typechecker: program is nil")
	}
	globals := c.base.Clone()

	for _, init := range program.Inits {
		if err := requireType(init.Type, "global "+init.Name); err != nil {
			return nil, nil, err
		}
		if globals.Has(init.Name) {
			return nil, nil, errorf(CodeDuplicateDeclaration, "duplicate declaration of %s", init.Name)
		}
		globals.declareGlobal(init.Name, init.Type)
	}
	for _, fn := range program.Functions {
		if err := requireType(fn.ReturnType, "return of "+fn.Name); err != nil {
			return nil, nil, err
		}
		if globals.Has(fn.Name) {
			return nil, nil, errorf(CodeDuplicateDeclaration, "duplicate declaration of %s", fn.Name)
		}
		globals.declareFunction(FunctionSignature{Name: fn.Name, Params: fn.Params, Return: fn.ReturnType})
	}

	inits, err := checkInitializers(program.Inits, "global")
	if err != nil {
		return nil, nil, err
	}

	functions := make([]*ast.FunctionDefinition, 0, len(program.Functions))
	for _, fn := range program.Functions {
		typed, err := c.checkFunction(globals, fn)
		if err != nil {
			return nil, nil, err
		}
		functions = append(functions, typed)
	}

	body, err := checkBlock(globals, newTopLevelEnv(), program.Body)
	if err != nil {
		return nil, nil, err
	}

	result := ast.NewProgram(functions, inits, body)
	result.Annot = ast.Resolved(blockType(body))
	return result, globals, nil
}

func checkInitializers(inits []*ast.VariableInitializer, scope string) ([]*ast.VariableInitializer, error) {
	checked := make([]*ast.VariableInitializer, 0, len(inits))
	for _, init := range inits {
		valueType, err := literalType(init.Value)
		if err != nil {
			return nil, err
		}
		if !assignable(valueType, init.Type) {
			return nil, mismatch(fmt.Sprintf("%s initializer %s", scope, init.Name), init.Type, valueType)
		}
		checked = append(checked, ast.NewVariableInitializer(init.Name, init.Type, init.Value))
	}
	return checked, nil
}

func (c *Checker) checkFunction(globals *GlobalEnv, fn *ast.FunctionDefinition) (*ast.FunctionDefinition, error) {
	if len(fn.Decls) > 0 {
		decl := fn.Decls[0]
		return nil, errorf(CodeUnsupportedScope, "%s declaration of %s in function %s is not supported", decl.Kind, decl.Name, fn.Name)
	}

	env := newFunctionEnv(fn.ReturnType)
	params := make([]*ast.TypedVariable, 0, len(fn.Params))
	for _, param := range fn.Params {
		if err := requireType(param.Type, fmt.Sprintf("parameter %s of %s", param.Name, fn.Name)); err != nil {
			return nil, err
		}
		if _, exists := env.vars[param.Name]; exists {
			return nil, errorf(CodeDuplicateDeclaration, "duplicate parameter %s in function %s", param.Name, fn.Name)
		}
		var def *ast.Literal
		if param.Default != nil {
			defaultType, err := literalType(*param.Default)
			if err != nil {
				return nil, err
			}
			if !assignable(defaultType, param.Type) {
				return nil, mismatch(fmt.Sprintf("default for parameter %s of %s", param.Name, fn.Name), param.Type, defaultType)
			}
			value := *param.Default
			def = &value
		}
		env.vars[param.Name] = param.Type
		params = append(params, ast.NewTypedVariable(param.Name, param.Type, def))
	}

	for _, init := range fn.Inits {
		if err := requireType(init.Type, fmt.Sprintf("local %s of %s", init.Name, fn.Name)); err != nil {
			return nil, err
		}
		if _, exists := env.vars[init.Name]; exists {
			return nil, errorf(CodeDuplicateDeclaration, "duplicate local %s in function %s", init.Name, fn.Name)
		}
		env.vars[init.Name] = init.Type
	}
	inits, err := checkInitializers(fn.Inits, "local")
	if err != nil {
		return nil, err
	}

	body, err := checkBlock(globals, env, fn.Body)
	if err != nil {
		return nil, err
	}
	return ast.NewFunctionDefinition(fn.Name, params, fn.ReturnType, []*ast.ScopeDeclaration{}, inits, body), nil
}

// assignable reports whether a value of type from may be stored where to is
// expected. Without subtyping this is equality.
func assignable(from, to ast.Type) bool {
	return from == to
}

// typeOf reads the type of an expression the checker has already annotated.
func typeOf(expr ast.Expression) ast.Type {
	typ, _ := expr.Annotation().Type()
	return typ
}

// blockType is the annotation of a block's trailing statement, or none.
func blockType(stmts []ast.Statement) ast.Type {
	if len(stmts) == 0 {
		return ast.TypeNone
	}
	typ, ok := stmts[len(stmts)-1].Annotation().Type()
	if !ok {
		return ast.TypeNone
	}
	return typ
}

// joinTypes merges the types of two branches: equal types are kept, anything
// else widens to none.
func joinTypes(a, b ast.Type) ast.Type {
	if a == b {
		return a
	}
	return ast.TypeNone
}

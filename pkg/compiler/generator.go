package compiler

import (
	"github.com/pkg/errors"

	"pywasm/compiler-go/pkg/ast"
	"pywasm/compiler-go/pkg/typechecker"
	"pywasm/compiler-go/pkg/wasm"
)

// HostModule is the namespace every host import lives under.
const HostModule = "imports"

// EntryExport is the export name of the synthesized top-level function.
const EntryExport = "_start"

// RevisionSection names the custom section carrying the source revision.
const RevisionSection = "pywasm.revision"

const (
	entryName   = ".start"
	scratchName = ".scratch"
)

type hostImport struct {
	name  string
	arity int
}

// Import order fixes the function index space, so it never changes.
var hostImports = []hostImport{
	{"print_num", 1},
	{"print_bool", 1},
	{"print_none", 1},
	{"abs", 1},
	{"max", 2},
	{"min", 2},
	{"pow", 2},
}

var printImports = map[ast.Type]string{
	ast.TypeNum:  "print_num",
	ast.TypeBool: "print_bool",
	ast.TypeNone: "print_none",
}

var binaryOpcodes = map[ast.BinaryOperator]wasm.Opcode{
	ast.OpAdd:      wasm.OpI32Add,
	ast.OpSub:      wasm.OpI32Sub,
	ast.OpMul:      wasm.OpI32Mul,
	ast.OpFloorDiv: wasm.OpI32DivS,
	ast.OpMod:      wasm.OpI32RemS,
	ast.OpEq:       wasm.OpI32Eq,
	ast.OpNe:       wasm.OpI32Ne,
	ast.OpLe:       wasm.OpI32LeS,
	ast.OpGe:       wasm.OpI32GeS,
	ast.OpLt:       wasm.OpI32LtS,
	ast.OpGt:       wasm.OpI32GtS,
}

type callTarget struct {
	index  uint32
	symbol string
}

// Host imports and user functions resolve through separate tables.
type generator struct {
	opts      Options
	module    *wasm.Module
	imports   map[string]callTarget
	functions map[string]callTarget
	globals   map[string]uint32
}

// compileContext is the slot table of one function. A fresh context is built
// per function and dropped when it finishes.
type compileContext struct {
	function string
	locals   map[string]uint32
	scratch  uint32
	entry    bool
	body     []wasm.Instr
}

func newGenerator(opts Options) *generator {
	return &generator{
		opts:      opts,
		module:    &wasm.Module{},
		imports:   make(map[string]callTarget),
		functions: make(map[string]callTarget),
		globals:   make(map[string]uint32),
	}
}

func newCompileContext(name string) *compileContext {
	return &compileContext{function: name, locals: make(map[string]uint32)}
}

func (ctx *compileContext) declare(name string) uint32 {
	slot := uint32(len(ctx.locals))
	ctx.locals[name] = slot
	return slot
}

func (ctx *compileContext) emit(instrs ...wasm.Instr) {
	ctx.body = append(ctx.body, instrs...)
}

func i32Signature(arity int) wasm.FuncType {
	params := make([]wasm.ValType, arity)
	for i := range params {
		params[i] = wasm.I32
	}
	return wasm.FuncType{Params: params, Results: []wasm.ValType{wasm.I32}}
}

// generate lowers a checked program. env is the environment returned by the
// checker; its globals beyond the program's own are given slots as well.
func (g *generator) generate(program *ast.Program, env *typechecker.GlobalEnv) (*wasm.Module, error) {
	mod := g.module
	for i, imp := range hostImports {
		entry := wasm.Import{Module: HostModule, Name: imp.name, Type: i32Signature(imp.arity)}
		mod.Imports = append(mod.Imports, entry)
		g.imports[imp.name] = callTarget{index: uint32(i), symbol: wasm.ImportID(entry)}
	}

	for _, name := range collectGlobals(program, env) {
		g.globals[name] = uint32(len(mod.Globals))
		mod.Globals = append(mod.Globals, wasm.Global{Name: name, Type: wasm.I32, Mutable: true})
	}

	for i, fn := range program.Functions {
		if _, exists := g.functions[fn.Name]; exists {
			return nil, errors.Errorf("compiler: function %s is defined twice", fn.Name)
		}
		g.functions[fn.Name] = callTarget{index: mod.FunctionIndex(i), symbol: fn.Name}
	}
	for _, fn := range program.Functions {
		compiled, err := g.compileFunction(fn)
		if err != nil {
			return nil, err
		}
		mod.Functions = append(mod.Functions, compiled)
	}

	entry, err := g.compileEntry(program)
	if err != nil {
		return nil, err
	}
	mod.Functions = append(mod.Functions, entry)

	if g.opts.Revision != "" {
		mod.Custom = append(mod.Custom, wasm.CustomSection{Name: RevisionSection, Data: []byte(g.opts.Revision)})
	}
	return mod, nil
}

// collectGlobals lists initializer globals, then implicit top-level
// assignment targets in source order, then any other checked globals.
func collectGlobals(program *ast.Program, env *typechecker.GlobalEnv) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, init := range program.Inits {
		add(init.Name)
	}
	var walk func(stmts []ast.Statement)
	walk = func(stmts []ast.Statement) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.AssignmentStatement:
				add(s.Name)
			case *ast.IfStatement:
				walk(s.Then)
				walk(s.Else)
			case *ast.WhileStatement:
				walk(s.Body)
			}
		}
	}
	walk(program.Body)
	if env != nil {
		for _, name := range env.GlobalNames() {
			add(name)
		}
	}
	return names
}

func (g *generator) compileFunction(fn *ast.FunctionDefinition) (wasm.Function, error) {
	ctx := newCompileContext(fn.Name)
	compiled := wasm.Function{Name: fn.Name, Results: []wasm.ValType{wasm.I32}}
	for _, param := range fn.Params {
		ctx.declare(param.Name)
		compiled.Params = append(compiled.Params, wasm.Local{Name: param.Name, Type: wasm.I32})
	}
	for _, init := range fn.Inits {
		ctx.declare(init.Name)
		compiled.Locals = append(compiled.Locals, wasm.Local{Name: init.Name, Type: wasm.I32})
	}
	ctx.scratch = ctx.declare(scratchName)
	compiled.Locals = append(compiled.Locals, wasm.Local{Name: scratchName, Type: wasm.I32})

	for _, init := range fn.Inits {
		value, err := literalConst(init.Value)
		if err != nil {
			return wasm.Function{}, err
		}
		ctx.emit(value, wasm.LocalSet(ctx.locals[init.Name], init.Name))
	}
	if err := g.compileBlock(ctx, fn.Body); err != nil {
		return wasm.Function{}, err
	}
	// Falling off the end returns zero.
	ctx.emit(wasm.I32Const(0))
	compiled.Body = ctx.body
	return compiled, nil
}

func (g *generator) compileEntry(program *ast.Program) (wasm.Function, error) {
	ctx := newCompileContext(entryName)
	ctx.entry = true
	ctx.scratch = ctx.declare(scratchName)
	entry := wasm.Function{
		Name:   entryName,
		Export: EntryExport,
		Locals: []wasm.Local{{Name: scratchName, Type: wasm.I32}},
	}
	for _, init := range program.Inits {
		store, err := g.store(ctx, init.Name)
		if err != nil {
			return wasm.Function{}, err
		}
		value, err := literalConst(init.Value)
		if err != nil {
			return wasm.Function{}, err
		}
		ctx.emit(value, store)
	}
	if err := g.compileBlock(ctx, program.Body); err != nil {
		return wasm.Function{}, err
	}
	if typ, ok := program.Annotation().Type(); ok && (typ == ast.TypeNum || typ == ast.TypeBool) {
		ctx.emit(wasm.LocalGet(ctx.scratch, scratchName))
		entry.Results = []wasm.ValType{wasm.I32}
	}
	entry.Body = ctx.body
	return entry, nil
}

func (g *generator) compileBlock(ctx *compileContext, stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := g.compileStatement(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) compileStatement(ctx *compileContext, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.AssignmentStatement:
		if err := g.compileExpression(ctx, s.Value); err != nil {
			return err
		}
		store, err := g.store(ctx, s.Name)
		if err != nil {
			return err
		}
		ctx.emit(store)
	case *ast.ExpressionStatement:
		if err := g.compileExpression(ctx, s.Expression); err != nil {
			return err
		}
		ctx.emit(wasm.LocalSet(ctx.scratch, scratchName))
	case *ast.ReturnStatement:
		if ctx.entry {
			return errors.New("compiler: return outside a function")
		}
		if err := g.compileExpression(ctx, s.Value); err != nil {
			return err
		}
		ctx.emit(wasm.Op(wasm.OpReturn))
	case *ast.IfStatement:
		if err := g.compileExpression(ctx, s.Condition); err != nil {
			return err
		}
		ctx.emit(wasm.Op(wasm.OpIf))
		if err := g.compileBlock(ctx, s.Then); err != nil {
			return err
		}
		ctx.emit(wasm.Op(wasm.OpElse))
		if err := g.compileBlock(ctx, s.Else); err != nil {
			return err
		}
		ctx.emit(wasm.Op(wasm.OpEnd))
	case *ast.WhileStatement:
		ctx.emit(wasm.Op(wasm.OpBlock), wasm.Op(wasm.OpLoop))
		if err := g.compileExpression(ctx, s.Condition); err != nil {
			return err
		}
		ctx.emit(wasm.Op(wasm.OpI32Eqz), wasm.BrIf(1))
		if err := g.compileBlock(ctx, s.Body); err != nil {
			return err
		}
		ctx.emit(wasm.Br(0), wasm.Op(wasm.OpEnd), wasm.Op(wasm.OpEnd))
	case *ast.PassStatement:
	default:
		return errors.Errorf("compiler: unsupported statement %T in %s", stmt, ctx.function)
	}
	return nil
}

func (g *generator) compileExpression(ctx *compileContext, expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.LiteralExpression:
		value, err := literalConst(e.Value)
		if err != nil {
			return err
		}
		ctx.emit(value)
	case *ast.Identifier:
		load, err := g.load(ctx, e.Name)
		if err != nil {
			return err
		}
		ctx.emit(load)
	case *ast.BinaryExpression:
		if e.Operator == ast.OpIs {
			same, err := typechecker.FoldedIdentity(e)
			if err != nil {
				return errors.Wrap(err, "compiler")
			}
			value, err := literalConst(ast.BoolLiteral(same))
			if err != nil {
				return err
			}
			ctx.emit(value)
			return nil
		}
		op, ok := binaryOpcodes[e.Operator]
		if !ok {
			return errors.Errorf("compiler: unsupported operator %q", e.Operator)
		}
		if err := g.compileExpression(ctx, e.Left); err != nil {
			return err
		}
		if err := g.compileExpression(ctx, e.Right); err != nil {
			return err
		}
		ctx.emit(wasm.Op(op))
	case *ast.UnaryExpression:
		switch e.Operator {
		case ast.UnaryNegate:
			ctx.emit(wasm.I32Const(0))
			if err := g.compileExpression(ctx, e.Operand); err != nil {
				return err
			}
			ctx.emit(wasm.Op(wasm.OpI32Sub))
		case ast.UnaryNot:
			if err := g.compileExpression(ctx, e.Operand); err != nil {
				return err
			}
			ctx.emit(wasm.I32Const(1), wasm.Op(wasm.OpI32Xor))
		default:
			return errors.Errorf("compiler: unsupported unary operator %q", e.Operator)
		}
	case *ast.Builtin1Call:
		if err := g.compileExpression(ctx, e.Argument); err != nil {
			return err
		}
		name := e.Name
		if name == "print" {
			typ, ok := e.Argument.Annotation().Type()
			if !ok {
				return errors.New("compiler: print argument is not typechecked")
			}
			name = printImports[typ]
		}
		return g.emitCall(ctx, g.imports, name)
	case *ast.Builtin2Call:
		if err := g.compileExpression(ctx, e.Left); err != nil {
			return err
		}
		if err := g.compileExpression(ctx, e.Right); err != nil {
			return err
		}
		return g.emitCall(ctx, g.imports, e.Name)
	case *ast.FunctionCall:
		if len(e.Keywords) > 0 {
			return errors.Errorf("compiler: call to %s has unpopulated keyword arguments", e.Name)
		}
		for _, arg := range e.Arguments {
			if err := g.compileExpression(ctx, arg); err != nil {
				return err
			}
		}
		return g.emitCall(ctx, g.functions, e.Name)
	default:
		return errors.Errorf("compiler: unsupported expression %T in %s", expr, ctx.function)
	}
	return nil
}

func literalConst(lit ast.Literal) (wasm.Instr, error) {
	value, ok := lit.Int32()
	if !ok {
		return wasm.Instr{}, errors.Errorf("compiler: unknown literal kind %q", lit.Kind)
	}
	return wasm.I32Const(value), nil
}

func (g *generator) emitCall(ctx *compileContext, table map[string]callTarget, name string) error {
	target, ok := table[name]
	if !ok {
		return errors.Errorf("compiler: nothing to call for %q in %s", name, ctx.function)
	}
	ctx.emit(wasm.Call(target.index, target.symbol))
	return nil
}

func (g *generator) load(ctx *compileContext, name string) (wasm.Instr, error) {
	if slot, ok := ctx.locals[name]; ok && !ctx.entry {
		return wasm.LocalGet(slot, name), nil
	}
	if slot, ok := g.globals[name]; ok {
		return wasm.GlobalGet(slot, name), nil
	}
	return wasm.Instr{}, errors.Errorf("compiler: no slot for %s in %s", name, ctx.function)
}

func (g *generator) store(ctx *compileContext, name string) (wasm.Instr, error) {
	if slot, ok := ctx.locals[name]; ok && !ctx.entry {
		return wasm.LocalSet(slot, name), nil
	}
	if slot, ok := g.globals[name]; ok {
		return wasm.GlobalSet(slot, name), nil
	}
	return wasm.Instr{}, errors.Errorf("compiler: no slot for %s in %s", name, ctx.function)
}

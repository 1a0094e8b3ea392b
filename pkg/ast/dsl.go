package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Num(value int32) *LiteralExpression {
	return NewLiteralExpression(NumLiteral(value))
}

func Bool(value bool) *LiteralExpression {
	return NewLiteralExpression(BoolLiteral(value))
}

func None() *LiteralExpression {
	return NewLiteralExpression(NoneLiteral())
}

// Operator helpers.

func Bin(op BinaryOperator, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Neg(operand Expression) *UnaryExpression {
	return NewUnaryExpression(UnaryNegate, operand)
}

func Not(operand Expression) *UnaryExpression {
	return NewUnaryExpression(UnaryNot, operand)
}

// Call helpers.

func Print(arg Expression) *Builtin1Call {
	return NewBuiltin1Call("print", arg)
}

func B1(name string, arg Expression) *Builtin1Call {
	return NewBuiltin1Call(name, arg)
}

func B2(name string, left, right Expression) *Builtin2Call {
	return NewBuiltin2Call(name, left, right)
}

func Call(name string, args ...Expression) *FunctionCall {
	if args == nil {
		args = []Expression{}
	}
	return NewFunctionCall(name, args, nil)
}

func CallKw(name string, args []Expression, keywords ...*KeywordArgument) *FunctionCall {
	if args == nil {
		args = []Expression{}
	}
	return NewFunctionCall(name, args, keywords)
}

func Kw(name string, value Expression) *KeywordArgument {
	return NewKeywordArgument(name, value)
}

// Statement helpers.

func Assign(name string, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(name, value)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func If(cond Expression, thn []Statement, els []Statement) *IfStatement {
	if thn == nil {
		thn = []Statement{}
	}
	if els == nil {
		els = []Statement{}
	}
	return NewIfStatement(cond, thn, els)
}

func While(cond Expression, body ...Statement) *WhileStatement {
	if body == nil {
		body = []Statement{}
	}
	return NewWhileStatement(cond, body)
}

func Pass() *PassStatement {
	return NewPassStatement()
}

func Block(stmts ...Statement) []Statement {
	if stmts == nil {
		return []Statement{}
	}
	return stmts
}

// Declaration helpers.

func Init(name string, typ Type, value Literal) *VariableInitializer {
	return NewVariableInitializer(name, typ, value)
}

func Param(name string, typ Type) *TypedVariable {
	return NewTypedVariable(name, typ, nil)
}

func ParamDefault(name string, typ Type, def Literal) *TypedVariable {
	return NewTypedVariable(name, typ, &def)
}

func Global(name string) *ScopeDeclaration {
	return NewScopeDeclaration(ScopeGlobal, name)
}

func Nonlocal(name string) *ScopeDeclaration {
	return NewScopeDeclaration(ScopeNonlocal, name)
}

func Fn(name string, params []*TypedVariable, ret Type, inits []*VariableInitializer, body ...Statement) *FunctionDefinition {
	return FnDecl(name, params, ret, nil, inits, body...)
}

func FnDecl(name string, params []*TypedVariable, ret Type, decls []*ScopeDeclaration, inits []*VariableInitializer, body ...Statement) *FunctionDefinition {
	if params == nil {
		params = []*TypedVariable{}
	}
	if decls == nil {
		decls = []*ScopeDeclaration{}
	}
	if inits == nil {
		inits = []*VariableInitializer{}
	}
	if body == nil {
		body = []Statement{}
	}
	return NewFunctionDefinition(name, params, ret, decls, inits, body)
}

func Prog(functions []*FunctionDefinition, inits []*VariableInitializer, body ...Statement) *Program {
	if functions == nil {
		functions = []*FunctionDefinition{}
	}
	if inits == nil {
		inits = []*VariableInitializer{}
	}
	if body == nil {
		body = []Statement{}
	}
	return NewProgram(functions, inits, body)
}

package ast

type NodeType string

const (
	NodeProgram             NodeType = "Program"
	NodeFunctionDefinition  NodeType = "FunctionDefinition"
	NodeVariableInitializer NodeType = "VariableInitializer"
	NodeTypedVariable       NodeType = "TypedVariable"
	NodeScopeDeclaration    NodeType = "ScopeDeclaration"
	NodeAssignmentStatement NodeType = "AssignmentStatement"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeIfStatement         NodeType = "IfStatement"
	NodeWhileStatement      NodeType = "WhileStatement"
	NodePassStatement       NodeType = "PassStatement"
	NodeLiteralExpression   NodeType = "LiteralExpression"
	NodeIdentifier          NodeType = "Identifier"
	NodeBinaryExpression    NodeType = "BinaryExpression"
	NodeUnaryExpression     NodeType = "UnaryExpression"
	NodeBuiltin1Call        NodeType = "Builtin1Call"
	NodeBuiltin2Call        NodeType = "Builtin2Call"
	NodeFunctionCall        NodeType = "FunctionCall"
	NodeKeywordArgument     NodeType = "KeywordArgument"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// annotatedNode carries the resolved-type slot shared by statements and expressions.
type annotatedNode struct {
	nodeImpl
	Annot Annotation `json:"annotation"`
}

func newAnnotatedNode(kind NodeType) annotatedNode {
	return annotatedNode{nodeImpl: newNodeImpl(kind)}
}

func (n annotatedNode) Annotation() Annotation { return n.Annot }

// Marker interfaces.

type Expression interface {
	Node
	Annotation() Annotation
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	Annotation() Annotation
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Program is the root of a compilation unit.
type Program struct {
	nodeImpl
	Annot     Annotation             `json:"annotation"`
	Functions []*FunctionDefinition  `json:"functions"`
	Inits     []*VariableInitializer `json:"inits"`
	Body      []Statement            `json:"body"`
}

func NewProgram(functions []*FunctionDefinition, inits []*VariableInitializer, body []Statement) *Program {
	return &Program{
		nodeImpl:  newNodeImpl(NodeProgram),
		Functions: functions,
		Inits:     inits,
		Body:      body,
	}
}

// Annotation is the type of the program's trailing statement once checked.
func (p *Program) Annotation() Annotation { return p.Annot }

// VariableInitializer declares a variable with a type and a literal value (`x: int = 1`).
type VariableInitializer struct {
	nodeImpl
	Name  string  `json:"name"`
	Type  Type    `json:"varType"`
	Value Literal `json:"value"`
}

func NewVariableInitializer(name string, typ Type, value Literal) *VariableInitializer {
	return &VariableInitializer{
		nodeImpl: newNodeImpl(NodeVariableInitializer),
		Name:     name,
		Type:     typ,
		Value:    value,
	}
}

// TypedVariable is a function parameter with an optional default literal.
type TypedVariable struct {
	nodeImpl
	Name    string   `json:"name"`
	Type    Type     `json:"varType"`
	Default *Literal `json:"default,omitempty"`
}

func NewTypedVariable(name string, typ Type, def *Literal) *TypedVariable {
	return &TypedVariable{
		nodeImpl: newNodeImpl(NodeTypedVariable),
		Name:     name,
		Type:     typ,
		Default:  def,
	}
}

type ScopeKind string

const (
	ScopeGlobal   ScopeKind = "global"
	ScopeNonlocal ScopeKind = "nonlocal"
)

type ScopeDeclaration struct {
	nodeImpl
	Kind ScopeKind `json:"kind"`
	Name string    `json:"name"`
}

func NewScopeDeclaration(kind ScopeKind, name string) *ScopeDeclaration {
	return &ScopeDeclaration{
		nodeImpl: newNodeImpl(NodeScopeDeclaration),
		Kind:     kind,
		Name:     name,
	}
}

type FunctionDefinition struct {
	nodeImpl
	Name       string                 `json:"name"`
	Params     []*TypedVariable       `json:"params"`
	ReturnType Type                   `json:"returnType"`
	Decls      []*ScopeDeclaration    `json:"decls"`
	Inits      []*VariableInitializer `json:"inits"`
	Body       []Statement            `json:"body"`
}

func NewFunctionDefinition(name string, params []*TypedVariable, ret Type, decls []*ScopeDeclaration, inits []*VariableInitializer, body []Statement) *FunctionDefinition {
	return &FunctionDefinition{
		nodeImpl:   newNodeImpl(NodeFunctionDefinition),
		Name:       name,
		Params:     params,
		ReturnType: ret,
		Decls:      decls,
		Inits:      inits,
		Body:       body,
	}
}

// Statements.

type AssignmentStatement struct {
	annotatedNode
	statementMarker
	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

func NewAssignmentStatement(name string, value Expression) *AssignmentStatement {
	return &AssignmentStatement{
		annotatedNode: newAnnotatedNode(NodeAssignmentStatement),
		Name:          name,
		Value:         value,
	}
}

type ReturnStatement struct {
	annotatedNode
	statementMarker
	Value Expression `json:"value"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{
		annotatedNode: newAnnotatedNode(NodeReturnStatement),
		Value:         value,
	}
}

type ExpressionStatement struct {
	annotatedNode
	statementMarker
	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{
		annotatedNode: newAnnotatedNode(NodeExpressionStatement),
		Expression:    expr,
	}
}

// IfStatement always has both arms.
type IfStatement struct {
	annotatedNode
	statementMarker
	Condition Expression  `json:"condition"`
	Then      []Statement `json:"then"`
	Else      []Statement `json:"else"`
}

func NewIfStatement(cond Expression, thn []Statement, els []Statement) *IfStatement {
	return &IfStatement{
		annotatedNode: newAnnotatedNode(NodeIfStatement),
		Condition:     cond,
		Then:          thn,
		Else:          els,
	}
}

type WhileStatement struct {
	annotatedNode
	statementMarker
	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

func NewWhileStatement(cond Expression, body []Statement) *WhileStatement {
	return &WhileStatement{
		annotatedNode: newAnnotatedNode(NodeWhileStatement),
		Condition:     cond,
		Body:          body,
	}
}

type PassStatement struct {
	annotatedNode
	statementMarker
}

func NewPassStatement() *PassStatement {
	return &PassStatement{annotatedNode: newAnnotatedNode(NodePassStatement)}
}

// Expressions.

type LiteralExpression struct {
	annotatedNode
	expressionMarker
	Value Literal `json:"value"`
}

func NewLiteralExpression(value Literal) *LiteralExpression {
	return &LiteralExpression{
		annotatedNode: newAnnotatedNode(NodeLiteralExpression),
		Value:         value,
	}
}

type Identifier struct {
	annotatedNode
	expressionMarker
	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{
		annotatedNode: newAnnotatedNode(NodeIdentifier),
		Name:          name,
	}
}

type BinaryExpression struct {
	annotatedNode
	expressionMarker
	Operator BinaryOperator `json:"operator"`
	Left     Expression     `json:"left"`
	Right    Expression     `json:"right"`
}

func NewBinaryExpression(op BinaryOperator, left, right Expression) *BinaryExpression {
	return &BinaryExpression{
		annotatedNode: newAnnotatedNode(NodeBinaryExpression),
		Operator:      op,
		Left:          left,
		Right:         right,
	}
}

type UnaryExpression struct {
	annotatedNode
	expressionMarker
	Operator UnaryOperator `json:"operator"`
	Operand  Expression    `json:"operand"`
}

func NewUnaryExpression(op UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{
		annotatedNode: newAnnotatedNode(NodeUnaryExpression),
		Operator:      op,
		Operand:       operand,
	}
}

// Builtin1Call is a one-argument call resolved to a host import (print, abs).
type Builtin1Call struct {
	annotatedNode
	expressionMarker
	Name     string     `json:"name"`
	Argument Expression `json:"argument"`
}

func NewBuiltin1Call(name string, arg Expression) *Builtin1Call {
	return &Builtin1Call{
		annotatedNode: newAnnotatedNode(NodeBuiltin1Call),
		Name:          name,
		Argument:      arg,
	}
}

// Builtin2Call is a two-argument call resolved to a host import (max, min, pow).
type Builtin2Call struct {
	annotatedNode
	expressionMarker
	Name  string     `json:"name"`
	Left  Expression `json:"left"`
	Right Expression `json:"right"`
}

func NewBuiltin2Call(name string, left, right Expression) *Builtin2Call {
	return &Builtin2Call{
		annotatedNode: newAnnotatedNode(NodeBuiltin2Call),
		Name:          name,
		Left:          left,
		Right:         right,
	}
}

type KeywordArgument struct {
	nodeImpl
	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

func NewKeywordArgument(name string, value Expression) *KeywordArgument {
	return &KeywordArgument{
		nodeImpl: newNodeImpl(NodeKeywordArgument),
		Name:     name,
		Value:    value,
	}
}

// FunctionCall calls a user-defined function by name. Keywords is emptied
// by the checker once defaults and keyword arguments are merged into Arguments.
type FunctionCall struct {
	annotatedNode
	expressionMarker
	Name      string             `json:"name"`
	Arguments []Expression       `json:"arguments"`
	Keywords  []*KeywordArgument `json:"keywords,omitempty"`
}

func NewFunctionCall(name string, args []Expression, keywords []*KeywordArgument) *FunctionCall {
	return &FunctionCall{
		annotatedNode: newAnnotatedNode(NodeFunctionCall),
		Name:          name,
		Arguments:     args,
		Keywords:      keywords,
	}
}

package ast

import (
	"encoding/json"
	"fmt"
)

// Type is one of the three value types of the language.
type Type string

const (
	TypeNum  Type = "num"
	TypeBool Type = "bool"
	TypeNone Type = "none"
)

func (t Type) Valid() bool {
	switch t {
	case TypeNum, TypeBool, TypeNone:
		return true
	default:
		return false
	}
}

func (t Type) String() string { return string(t) }

// ParseTypeName maps a surface annotation (`int`, `bool`, `None`) to a Type.
// The lowercase `none` spelling is accepted as well.
func ParseTypeName(name string) (Type, bool) {
	switch name {
	case "int":
		return TypeNum, true
	case "bool":
		return TypeBool, true
	case "None", "none":
		return TypeNone, true
	default:
		return "", false
	}
}

// Annotation is the type slot on statements and expressions. The zero value
// is unresolved; the checker replaces it with Resolved.
type Annotation struct {
	typ      Type
	resolved bool
}

func Unresolved() Annotation { return Annotation{} }

func Resolved(t Type) Annotation { return Annotation{typ: t, resolved: true} }

func (a Annotation) IsResolved() bool { return a.resolved }

func (a Annotation) Type() (Type, bool) { return a.typ, a.resolved }

func (a Annotation) String() string {
	if !a.resolved {
		return "<unresolved>"
	}
	return string(a.typ)
}

func (a Annotation) MarshalJSON() ([]byte, error) {
	if !a.resolved {
		return []byte("null"), nil
	}
	return json.Marshal(string(a.typ))
}

type LiteralKind string

const (
	LiteralNum  LiteralKind = "num"
	LiteralBool LiteralKind = "bool"
	LiteralNone LiteralKind = "none"
)

// Literal is a constant value. Num holds the value for LiteralNum and
// Bool for LiteralBool.
type Literal struct {
	Kind LiteralKind
	Num  int32
	Bool bool
}

func NumLiteral(v int32) Literal { return Literal{Kind: LiteralNum, Num: v} }

func BoolLiteral(v bool) Literal { return Literal{Kind: LiteralBool, Bool: v} }

func NoneLiteral() Literal { return Literal{Kind: LiteralNone} }

// Type is the literal's value type. An unknown kind has no type and reports
// false.
func (l Literal) Type() (Type, bool) {
	switch l.Kind {
	case LiteralNum:
		return TypeNum, true
	case LiteralBool:
		return TypeBool, true
	case LiteralNone:
		return TypeNone, true
	default:
		return "", false
	}
}

// Int32 is the runtime representation: booleans are 0/1 and None is 0.
func (l Literal) Int32() (int32, bool) {
	switch l.Kind {
	case LiteralNum:
		return l.Num, true
	case LiteralBool:
		if l.Bool {
			return 1, true
		}
		return 0, true
	case LiteralNone:
		return 0, true
	default:
		return 0, false
	}
}

func (l Literal) String() string {
	switch l.Kind {
	case LiteralNum:
		return fmt.Sprintf("%d", l.Num)
	case LiteralBool:
		if l.Bool {
			return "True"
		}
		return "False"
	case LiteralNone:
		return "None"
	default:
		return fmt.Sprintf("<%s literal>", l.Kind)
	}
}

func (l Literal) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case LiteralNum:
		return json.Marshal(map[string]any{"kind": l.Kind, "value": l.Num})
	case LiteralBool:
		return json.Marshal(map[string]any{"kind": l.Kind, "value": l.Bool})
	default:
		return json.Marshal(map[string]any{"kind": LiteralNone})
	}
}

type BinaryOperator string

const (
	OpAdd      BinaryOperator = "+"
	OpSub      BinaryOperator = "-"
	OpMul      BinaryOperator = "*"
	OpFloorDiv BinaryOperator = "//"
	OpMod      BinaryOperator = "%"
	OpEq       BinaryOperator = "=="
	OpNe       BinaryOperator = "!="
	OpLe       BinaryOperator = "<="
	OpGe       BinaryOperator = ">="
	OpLt       BinaryOperator = "<"
	OpGt       BinaryOperator = ">"
	OpIs       BinaryOperator = "is"
)

type OperatorClass int

const (
	ClassUnknown OperatorClass = iota
	ClassArithmetic
	ClassEquality
	ClassRelational
	ClassIdentity
)

func (op BinaryOperator) Class() OperatorClass {
	switch op {
	case OpAdd, OpSub, OpMul, OpFloorDiv, OpMod:
		return ClassArithmetic
	case OpEq, OpNe:
		return ClassEquality
	case OpLe, OpGe, OpLt, OpGt:
		return ClassRelational
	case OpIs:
		return ClassIdentity
	default:
		return ClassUnknown
	}
}

// ParseBinaryOperator recognises the surface spelling of a binary operator.
func ParseBinaryOperator(tok string) (BinaryOperator, bool) {
	switch op := BinaryOperator(tok); op {
	case OpAdd, OpSub, OpMul, OpFloorDiv, OpMod, OpEq, OpNe, OpLe, OpGe, OpLt, OpGt, OpIs:
		return op, true
	default:
		return "", false
	}
}

type UnaryOperator string

const (
	UnaryNegate UnaryOperator = "-"
	UnaryNot    UnaryOperator = "not"
)

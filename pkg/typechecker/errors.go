package typechecker

import (
	"fmt"

	"pywasm/compiler-go/pkg/ast"
)

type ErrorCode string

const (
	CodeUnresolvedName        ErrorCode = "unresolved-name"
	CodeTypeMismatch          ErrorCode = "type-mismatch"
	CodeDuplicateDeclaration  ErrorCode = "duplicate-declaration"
	CodeUnsupportedScope      ErrorCode = "unsupported-scope"
	CodeReturnOutsideFunction ErrorCode = "return-outside-function"
	CodeUnknownFunction       ErrorCode = "unknown-function"
	CodeArityMismatch         ErrorCode = "arity-mismatch"
	CodeInvalidAssignment     ErrorCode = "invalid-assignment"
	CodeInvalidKeyword        ErrorCode = "invalid-keyword"
	CodeMalformedNode         ErrorCode = "malformed-node"
)

// Error describes the first typing rule a program violated.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return "typechecker: " + e.Message
}

func errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func mismatch(context string, expected, actual fmt.Stringer) *Error {
	return errorf(CodeTypeMismatch, "%s: expected %s, got %s", context, expected, actual)
}

// literalType rejects literals whose kind is outside the closed set.
func literalType(lit ast.Literal) (ast.Type, error) {
	typ, ok := lit.Type()
	if !ok {
		return "", errorf(CodeMalformedNode, "unknown literal kind %q", lit.Kind)
	}
	return typ, nil
}

// requireType rejects type annotations outside num, bool and none.
func requireType(typ ast.Type, context string) error {
	if !typ.Valid() {
		return errorf(CodeMalformedNode, "%s has unknown type %q", context, typ)
	}
	return nil
}

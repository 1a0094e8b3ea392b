package compiler

import (
	"github.com/pkg/errors"

	"pywasm/compiler-go/pkg/parser"
	"pywasm/compiler-go/pkg/typechecker"
)

// Stage is the pipeline step that failed.
type Stage string

const (
	StageParse   Stage = "parse"
	StageCheck   Stage = "check"
	StageCodegen Stage = "codegen"
)

// Class groups failures by who is at fault: the source text (structural,
// type) or the compiler itself (internal).
type Class string

const (
	ClassStructural Class = "structural"
	ClassType       Class = "type"
	ClassInternal   Class = "internal"
)

// Error is the single failure a compilation reports. Err is the
// stage-specific error (*parser.ParseError, *typechecker.Error or an
// internal error carrying a stack).
type Error struct {
	Stage Stage
	Class Class
	Err   error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func classify(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	class := ClassInternal
	var parseErr *parser.ParseError
	var typeErr *typechecker.Error
	switch {
	case errors.As(err, &parseErr):
		class = ClassStructural
	case errors.As(err, &typeErr):
		class = ClassType
	}
	return &Error{Stage: stage, Class: class, Err: err}
}

// ClassOf reports the classification of err. Stage errors that did not pass
// through this package are classified the same way Compile would.
func ClassOf(err error) Class {
	if err == nil {
		return ""
	}
	var compileErr *Error
	if errors.As(classify("", err), &compileErr) {
		return compileErr.Class
	}
	return ClassInternal
}

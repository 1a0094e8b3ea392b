package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type ErrorKind string

const (
	// ErrorSyntax means the CST itself contains ERROR or MISSING nodes.
	ErrorSyntax ErrorKind = "syntax"
	// ErrorStructure means the CST parsed but uses a shape the language does not support.
	ErrorStructure ErrorKind = "structure"
)

// ParseError reports the first lowering failure. It carries no source location.
type ParseError struct {
	Kind    ErrorKind
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

func wrapParseError(err error) error {
	if err == nil {
		return nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return parseErr
	}
	message := err.Error()
	if !strings.HasPrefix(message, "parser: ") {
		message = "parser: " + message
	}
	return &ParseError{Kind: ErrorStructure, Message: message}
}

func syntaxError(root *sitter.Node, source []byte) *ParseError {
	missing, broken := locateSyntaxErrors(root)
	if missing != nil {
		return &ParseError{
			Kind:    ErrorSyntax,
			Message: fmt.Sprintf("parser: syntax error: expected %s", describeMissing(missing.Kind())),
		}
	}
	if broken != nil {
		snippet := strings.TrimSpace(sliceContent(broken, source))
		if idx := strings.IndexByte(snippet, '\n'); idx >= 0 {
			snippet = strings.TrimSpace(snippet[:idx])
		}
		if snippet != "" {
			return &ParseError{
				Kind:    ErrorSyntax,
				Message: fmt.Sprintf("parser: syntax error near %q", snippet),
			}
		}
	}
	return &ParseError{Kind: ErrorSyntax, Message: "parser: syntax error"}
}

// locateSyntaxErrors returns the earliest MISSING node and the earliest
// ERROR node under root. Subtrees without errors are not entered.
func locateSyntaxErrors(root *sitter.Node) (missing, broken *sitter.Node) {
	earlier := func(node, best *sitter.Node) bool {
		return best == nil || node.StartByte() < best.StartByte()
	}
	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		switch {
		case node.IsMissing():
			if earlier(node, missing) {
				missing = node
			}
			return
		case node.IsError():
			if earlier(node, broken) {
				broken = node
			}
		case !node.HasError():
			return
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			if child := node.Child(i); child != nil {
				visit(child)
			}
		}
	}
	if root != nil {
		visit(root)
	}
	return missing, broken
}

// pythonTokenNames covers the grammar's external and hidden tokens, whose
// kinds are not readable on their own.
var pythonTokenNames = map[string]string{
	"_newline":   "end of line",
	"newline":    "end of line",
	"_indent":    "an indented block",
	"indent":     "an indented block",
	"_dedent":    "end of block",
	"dedent":     "end of block",
	"block":      "an indented block",
	"identifier": "a name",
	"integer":    "a number",
}

func describeMissing(kind string) string {
	trimmed := strings.TrimSpace(kind)
	if trimmed == "" {
		return "a token"
	}
	if name, ok := pythonTokenNames[trimmed]; ok {
		return name
	}
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return strings.ReplaceAll(strings.TrimPrefix(trimmed, "_"), "_", " ")
		}
	}
	return fmt.Sprintf("'%s'", trimmed)
}

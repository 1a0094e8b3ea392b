package parser

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"pywasm/compiler-go/pkg/ast"
)

func assertProgramsEqual(t testing.TB, expected interface{}, actual interface{}) {
	t.Helper()
	if reflect.DeepEqual(expected, actual) {
		return
	}
	wantJSON, _ := json.Marshal(expected)
	gotJSON, _ := json.Marshal(actual)
	var wantAny interface{}
	var gotAny interface{}
	_ = json.Unmarshal(wantJSON, &wantAny)
	_ = json.Unmarshal(gotJSON, &gotAny)
	if reflect.DeepEqual(wantAny, gotAny) {
		return
	}
	wantPretty, _ := json.MarshalIndent(wantAny, "", "  ")
	gotPretty, _ := json.MarshalIndent(gotAny, "", "  ")
	t.Fatalf("program mismatch\nexpected: %s\n   actual: %s", wantPretty, gotPretty)
}

func mustParse(t testing.TB, source string) *ast.Program {
	t.Helper()
	p, err := NewModuleParser()
	if err != nil {
		t.Fatalf("NewModuleParser error: %v", err)
	}
	defer p.Close()

	program, err := p.ParseProgram([]byte(source))
	if err != nil {
		t.Fatalf("ParseProgram error: %v", err)
	}
	return program
}

func expectParseError(t testing.TB, source string, kind ErrorKind, fragment string) {
	t.Helper()
	_, err := ParseSource([]byte(source))
	if err == nil {
		t.Fatalf("expected parse error containing %q", fragment)
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if parseErr.Kind != kind {
		t.Fatalf("error kind mismatch: got %s, want %s (%v)", parseErr.Kind, kind, err)
	}
	if !strings.HasPrefix(parseErr.Message, "parser: ") {
		t.Fatalf("expected parser: prefix, got %q", parseErr.Message)
	}
	if !strings.Contains(parseErr.Message, fragment) {
		t.Fatalf("expected error containing %q, got %q", fragment, parseErr.Message)
	}
}

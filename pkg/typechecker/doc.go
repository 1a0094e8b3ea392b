// Package typechecker validates untyped programs produced by the parser and
// returns a new tree in which every statement and expression carries a
// resolved type. Checking is fail-fast: the first violated rule aborts with a
// single *Error. The package also exposes the identity folding pass that
// replaces `is` comparisons with the boolean constant decided at check time.
package typechecker

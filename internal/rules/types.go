package rules

import "github.com/fran6w/pandas-method-chaining/internal/pyast"

// Rule is a single pattern predicate evaluated against every node of a
// traversal. Eval reports whether n triggers the rule; it must treat the
// node and context as read-only, and a shape mismatch is an ordinary false,
// never an error.
type Rule struct {
	ID      string
	Summary string
	Message string
	Eval    func(n pyast.Node, ctx *Context) bool
}

// Package metrics computes per-file source statistics that the reports show
// next to the findings.
package metrics

import (
	"github.com/fran6w/pandas-method-chaining/internal/ir"
	"github.com/fran6w/pandas-method-chaining/internal/pyast"
)

// Compute walks one parsed file and returns its statistics.
func Compute(f *pyast.File) ir.Stats {
	var s ir.Stats
	if f == nil || f.Tree == nil {
		return s
	}
	pyast.Walk(f.Tree, func(n pyast.Node) bool {
		switch t := n.(type) {
		case *pyast.Module:
			s.Statements += len(t.Body)
		case *pyast.FunctionDef:
			s.Statements += len(t.Body)
		case *pyast.Assign:
			s.Assignments++
		case *pyast.Call:
			s.Calls++
			if d := chainDepth(t); d > s.LongestChain {
				s.LongestChain = d
			}
		}
		return true
	})
	return s
}

// chainDepth counts consecutive method calls in one chain:
// `df.a().b().c()` has depth 3.
func chainDepth(c *pyast.Call) int {
	depth := 1
	n := c.Fun
	for {
		switch t := n.(type) {
		case *pyast.Attribute:
			n = t.Value
		case *pyast.Subscript:
			n = t.Value
		case *pyast.Call:
			depth++
			n = t.Fun
		default:
			return depth
		}
	}
}

package rules

import "github.com/fran6w/pandas-method-chaining/internal/pyast"

// PMC003 mirrors PMC002 for subscripts: `df = df[...]` or `df = df.loc[...]`
// reassigns a name from a selection on itself.
func ruleReassignSubscript() Rule {
	return Rule{
		ID:      "PMC003",
		Summary: "Name reassigned from a subscript on itself",
		Message: "reassignment using subscript could be replaced by method chaining",
		Eval:    evalReassignSubscript,
	}
}

func evalReassignSubscript(n pyast.Node, _ *Context) bool {
	a, ok := n.(*pyast.Assign)
	if !ok || a.Value == nil {
		return false
	}
	sub, ok := a.Value.(*pyast.Subscript)
	if !ok {
		return false
	}
	base, ok := pyast.BaseName(sub.Value)
	if !ok {
		return false
	}
	return targetNamed(a, base)
}

package rules

import "github.com/fran6w/pandas-method-chaining/internal/pyast"

// PMC004 flags column/row mutation through a subscript target
// (`df[col] = value`), whatever the value is.
func ruleAssignSubscript() Rule {
	return Rule{
		ID:      "PMC004",
		Summary: "Assignment into a subscript target",
		Message: "assignment using subscript could be replaced by 'assign()'",
		Eval:    evalAssignSubscript,
	}
}

func evalAssignSubscript(n pyast.Node, _ *Context) bool {
	a, ok := n.(*pyast.Assign)
	if !ok {
		return false
	}
	for _, t := range a.Targets {
		if _, ok := t.(*pyast.Subscript); ok {
			return true
		}
	}
	return false
}

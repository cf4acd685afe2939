package rules

import "github.com/fran6w/pandas-method-chaining/internal/pyast"

// PMC006 is the narrow companion of PMC005: assignment into `.index` or
// `.columns` specifically, where `rename()` keeps the chain alive.
func ruleAssignIndex() Rule {
	return Rule{
		ID:      "PMC006",
		Summary: "Assignment into index or columns",
		Message: "assignment of index or columns could be replaced by 'rename()'",
		Eval:    evalAssignIndex,
	}
}

func evalAssignIndex(n pyast.Node, _ *Context) bool {
	a, ok := n.(*pyast.Assign)
	if !ok {
		return false
	}
	for _, t := range a.Targets {
		if attr, ok := t.(*pyast.Attribute); ok && isAxisAttr(attr.Attr) {
			return true
		}
	}
	return false
}

package rules

import "github.com/fran6w/pandas-method-chaining/internal/pyast"

// PMC005 flags attribute-target assignment (`df.col = value`). It declines
// when the attribute is exactly `index` or `columns`, which belong to
// PMC006, so one assignment never reports under both IDs. The predicate is
// shape-only and accepts over-triggering on non-dataframe receivers.
func ruleAssignAttribute() Rule {
	return Rule{
		ID:      "PMC005",
		Summary: "Assignment into an attribute target",
		Message: "assignment using attribute could be replaced by 'assign()'",
		Eval:    evalAssignAttribute,
	}
}

func evalAssignAttribute(n pyast.Node, _ *Context) bool {
	a, ok := n.(*pyast.Assign)
	if !ok {
		return false
	}
	for _, t := range a.Targets {
		if attr, ok := t.(*pyast.Attribute); ok && !isAxisAttr(attr.Attr) {
			return true
		}
	}
	return false
}

func isAxisAttr(attr string) bool {
	return attr == "index" || attr == "columns"
}

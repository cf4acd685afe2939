package rules

import "github.com/fran6w/pandas-method-chaining/internal/pyast"

// PMC001 flags any call carrying `inplace=True`, whatever method is called.
// inplace mutation breaks the chain and its return value is inconsistent
// across the pandas API.
func ruleInplace() Rule {
	return Rule{
		ID:      "PMC001",
		Summary: "Call uses the inplace=True keyword argument",
		Message: "usage of 'inplace=True' should be avoided",
		Eval:    evalInplace,
	}
}

func evalInplace(n pyast.Node, _ *Context) bool {
	call, ok := n.(*pyast.Call)
	if !ok {
		return false
	}
	for _, kw := range call.Keywords {
		if kw.Name != "inplace" {
			continue
		}
		if lit, ok := kw.Value.(*pyast.BoolLit); ok && lit.Value {
			return true
		}
	}
	return false
}

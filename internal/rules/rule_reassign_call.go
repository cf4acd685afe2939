package rules

import "github.com/fran6w/pandas-method-chaining/internal/pyast"

// PMC002 flags `df = df.method(...)`: the value is a call whose receiver
// chain hangs off the very name being assigned, so the statement could be
// folded into a chain instead.
func ruleReassignCall() Rule {
	return Rule{
		ID:      "PMC002",
		Summary: "Name reassigned from a call on itself",
		Message: "reassignment using call could be replaced by method chaining",
		Eval:    evalReassignCall,
	}
}

func evalReassignCall(n pyast.Node, _ *Context) bool {
	a, ok := n.(*pyast.Assign)
	if !ok || a.Value == nil {
		return false
	}
	call, ok := a.Value.(*pyast.Call)
	if !ok {
		return false
	}
	recv, ok := pyast.Receiver(call)
	if !ok {
		return false
	}
	return targetNamed(a, recv)
}

// targetNamed reports whether any plain-name target of the assignment is
// exactly name.
func targetNamed(a *pyast.Assign, name string) bool {
	for _, t := range a.Targets {
		if id, ok := t.(*pyast.Name); ok && id.ID == name {
			return true
		}
	}
	return false
}

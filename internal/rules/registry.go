package rules

// Default returns the built-in rule list in ID order. The list is explicit
// on purpose: rules are constructed once and passed into Evaluate, with no
// package-level registration.
func Default() []Rule {
	return []Rule{
		ruleInplace(),
		ruleReassignCall(),
		ruleReassignSubscript(),
		ruleAssignSubscript(),
		ruleAssignAttribute(),
		ruleAssignIndex(),
		ruleSelectionReuse(),
	}
}

// Get returns a rule by ID from a list, for report tooling.
func Get(list []Rule, id string) (Rule, bool) {
	for _, r := range list {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

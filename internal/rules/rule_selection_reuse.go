package rules

import "github.com/fran6w/pandas-method-chaining/internal/pyast"

// PMC007 flags a selection whose key is a name previously bound to a mask
// expression in the same scope: `mask = df.a > 0` then `df[mask]`. An inline
// lambda keeps the mask inside the chain. Names the context has not seen
// bound to a mask never fire; a miss is preferred over a guess.
func ruleSelectionReuse() Rule {
	return Rule{
		ID:      "PMC007",
		Summary: "Selection reuses a stored mask variable",
		Message: "selection reusing a variable could be performed with a lambda",
		Eval:    evalSelectionReuse,
	}
}

func evalSelectionReuse(n pyast.Node, ctx *Context) bool {
	sub, ok := n.(*pyast.Subscript)
	if !ok {
		return false
	}
	if _, ok := pyast.BaseName(sub.Value); !ok {
		return false
	}
	for _, idx := range sub.Index {
		if name, ok := idx.(*pyast.Name); ok && ctx.OriginOf(name.ID) == OriginMask {
			return true
		}
	}
	return false
}

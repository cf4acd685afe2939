package rules

import "github.com/fran6w/pandas-method-chaining/internal/pyast"

// Origin classifies the expression a name was last bound to within the
// current scope.
type Origin int

const (
	OriginNone Origin = iota
	OriginMask
	OriginCall
	OriginSubscript
	OriginOther
)

// Context tracks name bindings seen so far in one scope (module body or
// function body). It grows as the traversal advances and is discarded when
// the scope ends; nothing survives across files.
type Context struct {
	origins map[string]Origin
}

func NewContext() *Context {
	return &Context{origins: map[string]Origin{}}
}

func (c *Context) Bind(name string, o Origin) {
	if name == "" {
		return
	}
	c.origins[name] = o
}

func (c *Context) OriginOf(name string) Origin {
	return c.origins[name]
}

// bindAssign records what a single-name assignment binds its target to.
// Rebinding overwrites the origin, so a name that stops being a mask stops
// triggering mask-based rules.
func bindAssign(ctx *Context, a *pyast.Assign) {
	if len(a.Targets) != 1 || a.Value == nil {
		return
	}
	name, ok := a.Targets[0].(*pyast.Name)
	if !ok {
		return
	}
	switch {
	case pyast.IsMaskExpr(a.Value):
		ctx.Bind(name.ID, OriginMask)
	default:
		switch a.Value.(type) {
		case *pyast.Call:
			ctx.Bind(name.ID, OriginCall)
		case *pyast.Subscript:
			ctx.Bind(name.ID, OriginSubscript)
		default:
			ctx.Bind(name.ID, OriginOther)
		}
	}
}

// Package pyast defines a closed set of Python syntax-tree node variants.
//
// The concrete tree produced by tree-sitter is lowered into these variants by
// internal/parser. Each variant carries only the child fields the rules care
// about; every construct outside the set becomes an Unknown node whose
// children are still reachable, so traversal never loses nested expressions.
package pyast

// Position locates a node in its source file. Line is 1-based, Col is a
// 0-based column offset, matching what Python linters report.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

type Node interface {
	Pos() Position
}

// File is one parsed script: the lowered tree plus the raw source lines used
// for evidence extraction.
type File struct {
	Path  string
	Tree  *Module
	Lines []string
}

type Module struct {
	Position Position
	Body     []Node
}

type FunctionDef struct {
	Position Position
	Name     string
	Body     []Node
}

// Assign covers plain, chained and annotated assignments. Value is nil for a
// bare annotation (`x: int`).
type Assign struct {
	Position  Position
	Targets   []Node
	Value     Node
	Annotated bool
}

type AugAssign struct {
	Position Position
	Target   Node
	Value    Node
	Op       string
}

type Call struct {
	Position Position
	Fun      Node
	Args     []Node
	Keywords []Keyword
}

// Keyword is one `name=value` argument of a Call. It is not itself a Node;
// its Value participates in traversal through the Call's children.
type Keyword struct {
	Name  string
	Value Node
}

type Attribute struct {
	Position Position
	Value    Node
	Attr     string
}

// Subscript is a selection expression. Index holds every element between the
// brackets (`df.loc[mask, 'col']` has two).
type Subscript struct {
	Position Position
	Value    Node
	Index    []Node
}

type Name struct {
	Position Position
	ID       string
}

type BoolLit struct {
	Position Position
	Value    bool
}

type Compare struct {
	Position Position
	Operands []Node
}

type BoolOp struct {
	Position Position
	Op       string
	Left     Node
	Right    Node
}

type NotOp struct {
	Position Position
	Operand  Node
}

type Lambda struct {
	Position Position
	Body     Node
}

// Unknown is the catch-all for node kinds outside the closed set. Rules
// ignore it; traversal still descends into its children.
type Unknown struct {
	Position Position
	Kind     string
	Nodes    []Node
}

func (n *Module) Pos() Position      { return n.Position }
func (n *FunctionDef) Pos() Position { return n.Position }
func (n *Assign) Pos() Position      { return n.Position }
func (n *AugAssign) Pos() Position   { return n.Position }
func (n *Call) Pos() Position        { return n.Position }
func (n *Attribute) Pos() Position   { return n.Position }
func (n *Subscript) Pos() Position   { return n.Position }
func (n *Name) Pos() Position        { return n.Position }
func (n *BoolLit) Pos() Position     { return n.Position }
func (n *Compare) Pos() Position     { return n.Position }
func (n *BoolOp) Pos() Position      { return n.Position }
func (n *NotOp) Pos() Position       { return n.Position }
func (n *Lambda) Pos() Position      { return n.Position }
func (n *Unknown) Pos() Position     { return n.Position }

// Children returns a node's children in source order.
func Children(n Node) []Node {
	switch t := n.(type) {
	case *Module:
		return t.Body
	case *FunctionDef:
		return t.Body
	case *Assign:
		out := make([]Node, 0, len(t.Targets)+1)
		out = append(out, t.Targets...)
		if t.Value != nil {
			out = append(out, t.Value)
		}
		return out
	case *AugAssign:
		return compact(t.Target, t.Value)
	case *Call:
		out := make([]Node, 0, 1+len(t.Args)+len(t.Keywords))
		if t.Fun != nil {
			out = append(out, t.Fun)
		}
		out = append(out, t.Args...)
		for _, kw := range t.Keywords {
			if kw.Value != nil {
				out = append(out, kw.Value)
			}
		}
		return out
	case *Attribute:
		return compact(t.Value)
	case *Subscript:
		out := make([]Node, 0, 1+len(t.Index))
		if t.Value != nil {
			out = append(out, t.Value)
		}
		out = append(out, t.Index...)
		return out
	case *Compare:
		return t.Operands
	case *BoolOp:
		return compact(t.Left, t.Right)
	case *NotOp:
		return compact(t.Operand)
	case *Lambda:
		return compact(t.Body)
	case *Unknown:
		return t.Nodes
	default:
		return nil
	}
}

func compact(nodes ...Node) []Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Walk visits n and its descendants pre-order, left to right. Returning
// false from fn skips the node's subtree.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// BaseName unwinds attribute, call and subscript wrappers to the identifier
// an expression chain hangs off. `df.dropna().loc[x]` yields "df".
func BaseName(n Node) (string, bool) {
	for {
		switch t := n.(type) {
		case *Name:
			return t.ID, true
		case *Attribute:
			n = t.Value
		case *Subscript:
			n = t.Value
		case *Call:
			n = t.Fun
		default:
			return "", false
		}
		if n == nil {
			return "", false
		}
	}
}

// Receiver returns the base identifier a method-shaped call is invoked on.
// A plain function call (`fct(df)`) has no receiver.
func Receiver(c *Call) (string, bool) {
	switch fun := c.Fun.(type) {
	case *Attribute:
		return BaseName(fun.Value)
	case *Subscript:
		return BaseName(fun.Value)
	default:
		return "", false
	}
}

// IsMaskExpr reports whether an expression is shaped like a boolean mask:
// a comparison, a boolean combination of masks, or a negation of one.
func IsMaskExpr(n Node) bool {
	switch t := n.(type) {
	case *Compare:
		return true
	case *BoolOp:
		return IsMaskExpr(t.Left) || IsMaskExpr(t.Right)
	case *NotOp:
		return IsMaskExpr(t.Operand)
	default:
		return false
	}
}

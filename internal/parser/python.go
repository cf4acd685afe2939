package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/fran6w/pandas-method-chaining/internal/pyast"
)

// ParseSource parses one Python source and lowers the concrete tree-sitter
// tree into the closed pyast node set.
func ParseSource(path string, src []byte) (*pyast.File, error) {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: empty tree", path)
	}
	mod, err := lowerModule(root, src)
	if err != nil {
		return nil, fmt.Errorf("lower %s: %w", path, err)
	}
	return &pyast.File{
		Path:  path,
		Tree:  mod,
		Lines: strings.Split(string(src), "\n"),
	}, nil
}

func lowerModule(n *sitter.Node, src []byte) (*pyast.Module, error) {
	body, err := lowerChildren(n, src)
	if err != nil {
		return nil, err
	}
	return &pyast.Module{Position: posOf(n), Body: body}, nil
}

func lowerChildren(n *sitter.Node, src []byte) ([]pyast.Node, error) {
	count := int(n.NamedChildCount())
	var out []pyast.Node
	for i := 0; i < count; i++ {
		c, err := lower(n.NamedChild(i), src)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// lower maps a tree-sitter node to its pyast variant. Comments are dropped;
// everything without a variant becomes Unknown with its children lowered.
func lower(n *sitter.Node, src []byte) (pyast.Node, error) {
	if n == nil {
		return nil, nil
	}
	pos := posOf(n)

	switch n.Type() {
	case "comment":
		return nil, nil

	case "module":
		return lowerModule(n, src)

	case "expression_statement":
		// Transparent wrapper: a single-expression statement lowers to the
		// expression itself so assignments sit directly in the body.
		if n.NamedChildCount() == 1 {
			return lower(n.NamedChild(0), src)
		}
		kids, err := lowerChildren(n, src)
		if err != nil {
			return nil, err
		}
		return &pyast.Unknown{Position: pos, Kind: "expression_statement", Nodes: kids}, nil

	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return lower(n.NamedChild(0), src)
		}
		kids, err := lowerChildren(n, src)
		if err != nil {
			return nil, err
		}
		return &pyast.Unknown{Position: pos, Kind: "parenthesized_expression", Nodes: kids}, nil

	case "function_definition":
		name := text(n.ChildByFieldName("name"), src)
		var body []pyast.Node
		if b := n.ChildByFieldName("body"); b != nil {
			var err error
			body, err = lowerChildren(b, src)
			if err != nil {
				return nil, err
			}
		}
		return &pyast.FunctionDef{Position: pos, Name: name, Body: body}, nil

	case "assignment":
		left := n.ChildByFieldName("left")
		if left == nil {
			return nil, fmt.Errorf("assignment at %d:%d has no left-hand side", pos.Line, pos.Col)
		}
		targets, err := lowerTargets(left, src)
		if err != nil {
			return nil, err
		}
		var value pyast.Node
		if right := n.ChildByFieldName("right"); right != nil {
			value, err = lower(right, src)
			if err != nil {
				return nil, err
			}
		}
		return &pyast.Assign{
			Position:  pos,
			Targets:   targets,
			Value:     value,
			Annotated: n.ChildByFieldName("type") != nil,
		}, nil

	case "augmented_assignment":
		left := n.ChildByFieldName("left")
		if left == nil {
			return nil, fmt.Errorf("augmented assignment at %d:%d has no left-hand side", pos.Line, pos.Col)
		}
		target, err := lower(left, src)
		if err != nil {
			return nil, err
		}
		value, err := lower(n.ChildByFieldName("right"), src)
		if err != nil {
			return nil, err
		}
		return &pyast.AugAssign{
			Position: pos,
			Target:   target,
			Value:    value,
			Op:       text(n.ChildByFieldName("operator"), src),
		}, nil

	case "call":
		fun, err := lower(n.ChildByFieldName("function"), src)
		if err != nil {
			return nil, err
		}
		call := &pyast.Call{Position: pos, Fun: fun}
		if args := n.ChildByFieldName("arguments"); args != nil {
			count := int(args.NamedChildCount())
			for i := 0; i < count; i++ {
				a := args.NamedChild(i)
				if a.Type() == "keyword_argument" {
					v, err := lower(a.ChildByFieldName("value"), src)
					if err != nil {
						return nil, err
					}
					call.Keywords = append(call.Keywords, pyast.Keyword{
						Name:  text(a.ChildByFieldName("name"), src),
						Value: v,
					})
					continue
				}
				v, err := lower(a, src)
				if err != nil {
					return nil, err
				}
				if v != nil {
					call.Args = append(call.Args, v)
				}
			}
		}
		return call, nil

	case "attribute":
		value, err := lower(n.ChildByFieldName("object"), src)
		if err != nil {
			return nil, err
		}
		return &pyast.Attribute{
			Position: pos,
			Value:    value,
			Attr:     text(n.ChildByFieldName("attribute"), src),
		}, nil

	case "subscript":
		value, err := lower(n.ChildByFieldName("value"), src)
		if err != nil {
			return nil, err
		}
		sub := &pyast.Subscript{Position: pos, Value: value}
		// The value is the first named child; the rest are index elements.
		count := int(n.NamedChildCount())
		for i := 1; i < count; i++ {
			idx, err := lower(n.NamedChild(i), src)
			if err != nil {
				return nil, err
			}
			if idx != nil {
				sub.Index = append(sub.Index, idx)
			}
		}
		return sub, nil

	case "identifier":
		return &pyast.Name{Position: pos, ID: text(n, src)}, nil

	case "true":
		return &pyast.BoolLit{Position: pos, Value: true}, nil

	case "false":
		return &pyast.BoolLit{Position: pos, Value: false}, nil

	case "comparison_operator":
		operands, err := lowerChildren(n, src)
		if err != nil {
			return nil, err
		}
		return &pyast.Compare{Position: pos, Operands: operands}, nil

	case "boolean_operator":
		left, err := lower(n.ChildByFieldName("left"), src)
		if err != nil {
			return nil, err
		}
		right, err := lower(n.ChildByFieldName("right"), src)
		if err != nil {
			return nil, err
		}
		return &pyast.BoolOp{
			Position: pos,
			Op:       text(n.ChildByFieldName("operator"), src),
			Left:     left,
			Right:    right,
		}, nil

	case "not_operator":
		operand, err := lower(n.ChildByFieldName("argument"), src)
		if err != nil {
			return nil, err
		}
		return &pyast.NotOp{Position: pos, Operand: operand}, nil

	case "unary_operator":
		// `~mask` negates a boolean mask in pandas idiom.
		if text(n.ChildByFieldName("operator"), src) == "~" {
			operand, err := lower(n.ChildByFieldName("argument"), src)
			if err != nil {
				return nil, err
			}
			return &pyast.NotOp{Position: pos, Operand: operand}, nil
		}
		kids, err := lowerChildren(n, src)
		if err != nil {
			return nil, err
		}
		return &pyast.Unknown{Position: pos, Kind: "unary_operator", Nodes: kids}, nil

	case "lambda":
		body, err := lower(n.ChildByFieldName("body"), src)
		if err != nil {
			return nil, err
		}
		return &pyast.Lambda{Position: pos, Body: body}, nil

	default:
		kids, err := lowerChildren(n, src)
		if err != nil {
			return nil, err
		}
		return &pyast.Unknown{Position: pos, Kind: n.Type(), Nodes: kids}, nil
	}
}

// lowerTargets expands a left-hand side into individual targets, flattening
// tuple patterns (`a, b = ...`).
func lowerTargets(left *sitter.Node, src []byte) ([]pyast.Node, error) {
	switch left.Type() {
	case "pattern_list", "tuple_pattern":
		return lowerChildren(left, src)
	default:
		t, err := lower(left, src)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, nil
		}
		return []pyast.Node{t}, nil
	}
}

func posOf(n *sitter.Node) pyast.Position {
	p := n.StartPoint()
	return pyast.Position{Line: int(p.Row) + 1, Col: int(p.Column)}
}

func text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

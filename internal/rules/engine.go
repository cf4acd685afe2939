package rules

import (
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/fran6w/pandas-method-chaining/internal/ir"
	"github.com/fran6w/pandas-method-chaining/internal/pyast"
)

// CheckFile traverses one parsed file pre-order, offers every node to every
// rule, and returns the findings in visit order. The traversal is a pure
// function of the tree: same file in, same findings out.
func CheckFile(f *pyast.File, list []Rule) ([]ir.Finding, error) {
	if f == nil {
		return nil, fmt.Errorf("no file")
	}
	if f.Tree == nil {
		return nil, fmt.Errorf("no tree for %s", f.Path)
	}
	w := &walker{file: f, rules: list}
	w.walkBody(f.Tree.Body, NewContext())
	if w.err != nil {
		return nil, w.err
	}
	return w.out, nil
}

type walker struct {
	file  *pyast.File
	rules []Rule
	out   []ir.Finding
	err   error
}

func (w *walker) walkBody(body []pyast.Node, ctx *Context) {
	for _, n := range body {
		w.visit(n, ctx)
		if w.err != nil {
			return
		}
	}
}

func (w *walker) visit(n pyast.Node, ctx *Context) {
	if n == nil || w.err != nil {
		return
	}

	// A function body is its own top-level unit: fresh context, nothing
	// leaks in or out.
	if fn, ok := n.(*pyast.FunctionDef); ok {
		w.apply(n, ctx)
		w.walkBody(fn.Body, NewContext())
		return
	}

	if a, ok := n.(*pyast.Assign); ok && len(a.Targets) == 0 {
		w.err = fmt.Errorf("%s: assignment at %d:%d has no target", w.file.Path, a.Position.Line, a.Position.Col)
		return
	}

	w.apply(n, ctx)

	// Bindings become visible to later statements, not to the node's own
	// evaluation.
	if a, ok := n.(*pyast.Assign); ok {
		bindAssign(ctx, a)
	}

	for _, c := range pyast.Children(n) {
		w.visit(c, ctx)
		if w.err != nil {
			return
		}
	}
}

func (w *walker) apply(n pyast.Node, ctx *Context) {
	for _, r := range w.rules {
		if r.Eval(n, ctx) {
			pos := n.Pos()
			w.out = append(w.out, ir.Finding{
				File:     w.file.Path,
				RuleID:   r.ID,
				Message:  r.Message,
				Line:     pos.Line,
				Col:      pos.Col,
				Evidence: w.evidence(pos.Line),
			})
		}
	}
}

func (w *walker) evidence(line int) string {
	if line < 1 || line > len(w.file.Lines) {
		return ""
	}
	return strings.TrimSpace(w.file.Lines[line-1])
}

// Evaluate runs the rule list over every file, in file order, and assigns
// run-local finding IDs. Disabled rules are filtered out before traversal.
// Files whose traversal fails contribute an error instead of findings; the
// remaining files are still checked.
func Evaluate(files []pyast.File, list []Rule) ([]ir.Finding, []error) {
	active := make([]Rule, 0, len(list))
	for _, r := range list {
		if rsettings.Disabled[strings.ToUpper(r.ID)] {
			continue
		}
		active = append(active, r)
	}

	var all []ir.Finding
	var errs []error

	seen := make(map[string]struct{})
	seq := 0
	put := func(id string) bool {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		return true
	}

	for i := range files {
		fs, err := CheckFile(&files[i], active)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for k := range fs {
			id := makeID(fs[k].RuleID, fs[k].File, fs[k].Line, fs[k].Col)
			if !put(id) {
				for {
					seq++
					candidate := fmt.Sprintf("%s-%06d", fs[k].RuleID, seq)
					if put(candidate) {
						id = candidate
						break
					}
				}
			}
			fs[k].ID = id
		}
		all = append(all, fs...)
	}
	return all, errs
}

func makeID(ruleID, file string, line, col int) string {
	data := fmt.Sprintf("%s|%s|%d|%d", ruleID, file, line, col)
	sum := crc32.ChecksumIEEE([]byte(data))
	return fmt.Sprintf("%s-%08x", ruleID, sum)
}

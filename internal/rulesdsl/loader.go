// Package rulesdsl loads extra call-pattern rules from YAML packs. A pack
// rule matches on the called method name and, optionally, on a keyword
// argument being present; it compiles into the same Rule shape the built-ins
// use and is appended to the explicit rule list by the caller.
package rulesdsl

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fran6w/pandas-method-chaining/internal/pyast"
	"github.com/fran6w/pandas-method-chaining/internal/rules"
)

type dslPack struct {
	Rules []dslRule `yaml:"rules"`
}

type dslRule struct {
	ID      string `yaml:"id"`
	Summary string `yaml:"summary"`
	Message string `yaml:"message"`

	Where struct {
		Method  string `yaml:"method"`  // regex on the called method/function name (case-insensitive)
		Keyword string `yaml:"keyword"` // require this keyword argument (optional)
	} `yaml:"where"`
}

// Load reads a YAML pack and returns its compiled rules.
func Load(path string) ([]rules.Rule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules pack: %w", err)
	}
	var pack dslPack
	if err := yaml.Unmarshal(b, &pack); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out := make([]rules.Rule, 0, len(pack.Rules))
	for _, r := range pack.Rules {
		cr, err := compile(r)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.ID, err)
		}
		out = append(out, cr)
	}
	return out, nil
}

func compile(r dslRule) (rules.Rule, error) {
	if r.ID == "" || r.Message == "" || r.Where.Method == "" {
		return rules.Rule{}, fmt.Errorf("missing required fields (id/message/where.method)")
	}
	reMethod, err := regexp.Compile("(?i)^(?:" + r.Where.Method + ")$")
	if err != nil {
		return rules.Rule{}, fmt.Errorf("method regex: %w", err)
	}
	needKeyword := strings.TrimSpace(r.Where.Keyword)

	return rules.Rule{
		ID:      r.ID,
		Summary: r.Summary,
		Message: r.Message,
		Eval: func(n pyast.Node, _ *rules.Context) bool {
			call, ok := n.(*pyast.Call)
			if !ok {
				return false
			}
			if !reMethod.MatchString(calledName(call)) {
				return false
			}
			if needKeyword == "" {
				return true
			}
			for _, kw := range call.Keywords {
				if kw.Name == needKeyword {
					return true
				}
			}
			return false
		},
	}, nil
}

func calledName(c *pyast.Call) string {
	switch fun := c.Fun.(type) {
	case *pyast.Attribute:
		return fun.Attr
	case *pyast.Name:
		return fun.ID
	default:
		return ""
	}
}

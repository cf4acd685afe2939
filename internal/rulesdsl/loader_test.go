package rulesdsl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fran6w/pandas-method-chaining/internal/pyast"
	"github.com/fran6w/pandas-method-chaining/internal/rules"
)

const samplePack = `
rules:
  - id: ORG001
    summary: append is deprecated
    message: "usage of 'append' should be replaced by 'concat'"
    where:
      method: append
  - id: ORG002
    summary: sort_values with inplace
    message: "sort_values(inplace=True) breaks the chain"
    where:
      method: sort_values
      keyword: inplace
`

func loadPack(t *testing.T, content string) []rules.Rule {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return out
}

func TestLoadPack(t *testing.T) {
	list := loadPack(t, samplePack)
	if len(list) != 2 {
		t.Fatalf("want 2 rules, got %d", len(list))
	}
	if list[0].ID != "ORG001" || list[1].ID != "ORG002" {
		t.Fatalf("ids = %s, %s", list[0].ID, list[1].ID)
	}
}

func TestMethodMatch(t *testing.T) {
	list := loadPack(t, samplePack)
	r := list[0]

	df := &pyast.Name{ID: "df"}
	appendCall := &pyast.Call{Fun: &pyast.Attribute{Value: df, Attr: "append"}}
	otherCall := &pyast.Call{Fun: &pyast.Attribute{Value: df, Attr: "concat"}}

	if !r.Eval(appendCall, nil) {
		t.Fatal("df.append() should match")
	}
	if r.Eval(otherCall, nil) {
		t.Fatal("df.concat() should not match")
	}
	if r.Eval(df, nil) {
		t.Fatal("non-call nodes never match")
	}
}

func TestKeywordRequirement(t *testing.T) {
	list := loadPack(t, samplePack)
	r := list[1]

	df := &pyast.Name{ID: "df"}
	with := &pyast.Call{
		Fun:      &pyast.Attribute{Value: df, Attr: "sort_values"},
		Keywords: []pyast.Keyword{{Name: "inplace", Value: &pyast.BoolLit{Value: true}}},
	}
	without := &pyast.Call{Fun: &pyast.Attribute{Value: df, Attr: "sort_values"}}

	if !r.Eval(with, nil) {
		t.Fatal("call with the keyword should match")
	}
	if r.Eval(without, nil) {
		t.Fatal("call without the keyword should not match")
	}
}

func TestLoadRejectsIncompleteRule(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(p, []byte("rules:\n  - id: X\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatal("rule without message/method should fail to compile")
	}
}

func TestLoadRejectsBadRegex(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.yaml")
	content := "rules:\n  - id: X\n    message: m\n    where:\n      method: '('\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatal("invalid method regex should fail")
	}
}

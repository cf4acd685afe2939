package reporting

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/fran6w/pandas-method-chaining/internal/ir"
)

func TestWriteDiffJSON(t *testing.T) {
	base := &ir.Run{Findings: []ir.Finding{
		{RuleID: "PMC001", File: "a.py", Line: 1, Col: 0, Message: "m1", Evidence: "df.dropna(inplace=True)"},
		{RuleID: "PMC004", File: "a.py", Line: 4, Col: 0, Message: "m4", Evidence: "df['c'] = 5"},
	}}
	head := &ir.Run{Findings: []ir.Finding{
		// same finding, moved down two lines
		{RuleID: "PMC001", File: "a.py", Line: 3, Col: 0, Message: "m1", Evidence: "df.dropna(inplace=True)"},
		// new finding
		{RuleID: "PMC006", File: "a.py", Line: 9, Col: 0, Message: "m6", Evidence: "df.columns = ['x']"},
	}}

	outDir := t.TempDir()
	path, err := WriteDiffJSON("base-1", "head-1", outDir, base, head)
	if err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got diffPayload
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}

	if got.Summary.NewCount != 1 || got.Summary.RemovedCount != 1 || got.Summary.ChangedCount != 1 {
		t.Fatalf("summary = %+v", got.Summary)
	}
	if got.New[0].RuleID != "PMC006" {
		t.Fatalf("new = %+v", got.New[0])
	}
	if got.Removed[0].RuleID != "PMC004" {
		t.Fatalf("removed = %+v", got.Removed[0])
	}
	ch := got.Changed[0]
	if ch.Base.Line != 1 || ch.Head.Line != 3 {
		t.Fatalf("changed = %+v", ch)
	}
	if len(ch.Changed) != 1 || ch.Changed[0] != "line" {
		t.Fatalf("fields_changed = %v", ch.Changed)
	}
}

func TestWriteDiffJSONIdentical(t *testing.T) {
	run := &ir.Run{Findings: []ir.Finding{
		{RuleID: "PMC002", File: "a.py", Line: 2, Message: "m", Evidence: "df = df.dropna()"},
	}}
	path, err := WriteDiffJSON("a", "b", t.TempDir(), run, run)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	var got diffPayload
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got.Summary.NewCount+got.Summary.RemovedCount+got.Summary.ChangedCount != 0 {
		t.Fatalf("identical runs should produce an empty diff, got %+v", got.Summary)
	}
}

package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"

	"github.com/fran6w/pandas-method-chaining/internal/ir"
)

func WriteHTML(runID, outDir string, run *ir.Run) (string, error) {
	path := filepath.Join(outDir, runID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Head + styles
	fmt.Fprintf(f, "<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(runID))
	fmt.Fprint(f, "<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace}</style>")
	fmt.Fprint(f, "</head><body>")

	// Title + summary
	fmt.Fprintf(f, "<h1>pmclint report – <span class='mono'>%s</span></h1>", html.EscapeString(runID))
	fmt.Fprintf(f, "<p>Files: %d &nbsp; Findings: %d</p>", len(run.Files), len(run.Findings))
	if n := len(run.Context.DisabledRules); n > 0 {
		fmt.Fprintf(f, "<p class='dim'>Disabled rules: %d</p>", n)
	}
	if n := len(run.Context.RulePacks); n > 0 {
		fmt.Fprintf(f, "<p class='dim'>Extra rule packs: %d</p>", n)
	}

	// Per-file statistics
	if len(run.Files) > 0 {
		fmt.Fprint(f, "<h2>Files</h2><table><tr><th>File</th><th>Lines</th><th>Statements</th><th>Assignments</th><th>Calls</th><th>Longest chain</th></tr>")
		for _, fl := range run.Files {
			st := fl.Annotations.Stats
			fmt.Fprintf(f, "<tr><td class='mono'>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td></tr>",
				html.EscapeString(fl.Path), fl.Lines, st.Statements, st.Assignments, st.Calls, st.LongestChain)
		}
		fmt.Fprint(f, "</table>")
	}

	// Rule frequency
	if len(run.Findings) > 0 {
		counts := map[string]int{}
		for _, fd := range run.Findings {
			counts[fd.RuleID]++
		}
		ids := make([]string, 0, len(counts))
		for id := range counts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Fprint(f, "<h2>Rules Triggered</h2><table><tr><th>Rule</th><th>Count</th></tr>")
		for _, id := range ids {
			fmt.Fprintf(f, "<tr><td>%s</td><td>%d</td></tr>", html.EscapeString(id), counts[id])
		}
		fmt.Fprint(f, "</table>")
	}

	// All findings, in run order
	if len(run.Findings) > 0 {
		fmt.Fprint(f, "<h2>All Findings</h2><table><tr><th>Rule</th><th>File</th><th>Location</th><th>Message</th><th>Evidence</th></tr>")
		for _, fd := range run.Findings {
			fmt.Fprintf(f, "<tr><td>%s</td><td class='mono'>%s</td><td>%d:%d</td><td>%s</td><td class='mono'>%s</td></tr>",
				html.EscapeString(fd.RuleID),
				html.EscapeString(fd.File),
				fd.Line, fd.Col,
				html.EscapeString(fd.Message),
				html.EscapeString(fd.Evidence),
			)
		}
		fmt.Fprint(f, "</table>")
	} else {
		fmt.Fprint(f, "<h2>All Findings</h2><p class='dim'>No findings.</p>")
	}

	fmt.Fprint(f, "</body></html>")
	return path, nil
}

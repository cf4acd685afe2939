package perf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fran6w/pandas-method-chaining/internal/metrics"
	"github.com/fran6w/pandas-method-chaining/internal/parser"
	"github.com/fran6w/pandas-method-chaining/internal/rules"
)

const benchSnippet = `df.dropna(inplace=True)
df = df.dropna()
df = df[df.a > 0]
df['new_col'] = 5
df.columns = ['a', 'b']
mask = df.a > 0
out = df[mask]
`

func BenchmarkAnalyze_Small(b *testing.B) {
	dir := b.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.py"), []byte(benchSnippet), 0o644); err != nil {
		b.Fatal(err)
	}

	rules.SetSettings(rules.Settings{})
	list := rules.Default()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		files, _ := parser.Parse(dir)
		if len(files) == 0 {
			b.Fatal("no files parsed")
		}
		for j := range files {
			_ = metrics.Compute(&files[j])
		}
		findings, errs := rules.Evaluate(files, list)
		if len(errs) > 0 {
			b.Fatalf("check errors: %v", errs)
		}
		if len(findings) == 0 {
			b.Fatal("no findings")
		}
	}
}

func BenchmarkAnalyze_LargeScript(b *testing.B) {
	// ~500 statements of mixed shapes in a single script
	var sb strings.Builder
	for i := 0; i < 70; i++ {
		sb.WriteString(benchSnippet)
	}
	dir := b.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "big.py"), []byte(sb.String()), 0o644); err != nil {
		b.Fatal(err)
	}

	rules.SetSettings(rules.Settings{})
	list := rules.Default()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		files, _ := parser.Parse(dir)
		findings, errs := rules.Evaluate(files, list)
		if len(errs) > 0 {
			b.Fatalf("check errors: %v", errs)
		}
		if len(findings) == 0 {
			b.Fatal("no findings")
		}
	}
}

package ir

import "time"

const Version = "1.0"

type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source,omitempty"`
	IRVersion string    `json:"ir_version,omitempty"`

	Context  Context   `json:"context"`
	Files    []File    `json:"files"`
	Findings []Finding `json:"findings,omitempty"`
}

type Context struct {
	DisabledRules []string `json:"disabled_rules,omitempty"`
	RulePacks     []string `json:"rule_packs,omitempty"`
}

type File struct {
	Path        string `json:"path"`
	Lines       int    `json:"lines"`
	Annotations Anno   `json:"annotations"`
}

type Anno struct {
	Stats Stats `json:"stats"`
}

// Stats are per-file source metrics attached between parsing and rules.
type Stats struct {
	Statements   int `json:"statements"`
	Assignments  int `json:"assignments"`
	Calls        int `json:"calls"`
	LongestChain int `json:"longest_chain"`
}

type Finding struct {
	ID       string         `json:"id"`
	File     string         `json:"file"`
	RuleID   string         `json:"rule_id"`
	Message  string         `json:"message"`
	Line     int            `json:"line"`
	Col      int            `json:"col"`
	Evidence string         `json:"evidence,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

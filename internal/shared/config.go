package shared

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./pmclint.db"
	} `yaml:"database"`

	Analysis struct {
		Sources       []string `yaml:"sources"`        // ["./scripts"]
		DisabledRules []string `yaml:"disabled_rules"` // ["PMC005"]
		RulePacks     []string `yaml:"rule_packs"`     // extra YAML rule packs
	} `yaml:"analysis"`

	Reporting struct {
		OutDir string `yaml:"out_dir"` // "./reports"
	} `yaml:"reporting"`

	Server struct {
		Addr string `yaml:"addr"` // ":8080"
	} `yaml:"server"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./pmclint.db"
	c.Reporting.OutDir = "./reports"
	c.Server.Addr = ":8080"
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	return c
}

func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	// Env overrides (simple, explicit)
	if v := os.Getenv("PMCLINT_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("PMCLINT_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("PMCLINT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PMCLINT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("PMCLINT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PMCLINT_DISABLED_RULES"); v != "" {
		c.Analysis.DisabledRules = splitCSV(v)
	}
	return c, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

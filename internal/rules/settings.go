package rules

import "strings"

type Settings struct {
	Disabled map[string]bool // UPPER(ruleID) -> disabled
}

var rsettings = Settings{Disabled: map[string]bool{}}

func SetSettings(s Settings) {
	if s.Disabled == nil {
		s.Disabled = map[string]bool{}
	}
	rsettings = s
}

// DisabledSet normalizes a list of rule IDs into the Settings map form.
func DisabledSet(ids []string) map[string]bool {
	out := map[string]bool{}
	for _, id := range ids {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id != "" {
			out[id] = true
		}
	}
	return out
}

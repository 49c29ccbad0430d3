package configmodel

import (
	"encoding/json"
	"strings"
)

// UnmarshalJSON normalizes the Y/N Virtual flag; absent or unrecognized
// values default to non-virtual, matching the original model's validator.
func (c *IterationCohort) UnmarshalJSON(b []byte) error {
	type alias IterationCohort
	aux := (*alias)(c)
	if err := json.Unmarshal(b, aux); err != nil {
		return err
	}
	c.Virtual = isYes(c.RawVirtual)
	return nil
}

// UnmarshalJSON lifts the raw Y/N-or-bool RuleStop encoding into the bool
// field rule evaluation actually reads.
func (r *IterationRule) UnmarshalJSON(b []byte) error {
	type alias IterationRule
	aux := (*alias)(r)
	if err := json.Unmarshal(b, aux); err != nil {
		return err
	}
	r.RuleStop = r.RawRuleStop.set && r.RawRuleStop.value
	return nil
}

func isYes(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "Y")
}

// validVirtualFlag reports whether raw, trimmed and compared
// case-insensitively, is one of the two codes the wire format allows.
// An absent flag (empty string) is valid and defaults to "N".
func validVirtualFlag(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}
	return strings.EqualFold(trimmed, "Y") || strings.EqualFold(trimmed, "N")
}

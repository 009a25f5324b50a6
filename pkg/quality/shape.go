package quality

import (
	"fmt"
	"strings"

	"github.com/prentissw/charted-roots/pkg/records"
)

// sexAliases maps the values seen in real imports to canonical M/F/X.
var sexAliases = map[string]string{
	"m": "M", "male": "M", "man": "M", "boy": "M", "h": "M",
	"f": "F", "female": "F", "woman": "F", "girl": "F", "w": "F",
	"x": "X", "nb": "X", "nonbinary": "X", "non-binary": "X", "enby": "X", "other": "X",
	"u": "U", "unknown": "U", "?": "U", "": "U",
}

// NormalizeSex maps a raw sex value to its canonical letter. The second
// return is false for values with no known alias.
func NormalizeSex(raw string) (string, bool) {
	canonical, ok := sexAliases[strings.ToLower(strings.TrimSpace(raw))]
	return canonical, ok
}

func (a *Analyzer) checkSex(rec *records.PersonRecord) []Issue {
	if !a.cfg.NormalizeSex {
		return nil
	}
	if _, ok := records.ParseSex(rec.Sex); ok {
		return nil
	}
	canonical, known := NormalizeSex(rec.Sex)
	if known {
		return []Issue{{
			Category: CategoryStructure,
			Severity: SeverityInfo,
			Kind:     "noncanonical_sex",
			Person:   rec.ID,
			Field:    "sex",
			Message:  fmt.Sprintf("sex %q should be normalized to %q", rec.Sex, canonical),
		}}
	}
	return []Issue{{
		Category: CategoryStructure,
		Severity: SeverityWarning,
		Kind:     "unknown_sex_value",
		Person:   rec.ID,
		Field:    "sex",
		Message:  fmt.Sprintf("sex %q has no known canonical form", rec.Sex),
	}}
}

// legacyFields are frontmatter keys from older schema generations; their
// presence is worth an info entry so cleanup wizards can migrate them.
var legacyFields = map[string]string{
	"parents":     "father/mother",
	"partner":     "spouses",
	"birth_place": "events",
	"death_place": "events",
	"cr_id":       "id",
}

// checkShape flags frontmatter values whose shape is wrong: nested objects
// where a flat string or list was expected, and legacy field names.
func (a *Analyzer) checkShape(rec *records.PersonRecord) []Issue {
	var issues []Issue
	for key, val := range rec.Extra {
		if replacement, legacy := legacyFields[strings.ToLower(key)]; legacy {
			issues = append(issues, Issue{
				Category: CategoryLegacy,
				Severity: SeverityInfo,
				Kind:     "legacy_field",
				Person:   rec.ID,
				Field:    key,
				Message:  fmt.Sprintf("legacy field %q; current schema uses %s", key, replacement),
			})
		}
		switch v := val.(type) {
		case map[string]any:
			issues = append(issues, Issue{
				Category: CategoryStructure,
				Severity: SeverityWarning,
				Kind:     "nested_property",
				Person:   rec.ID,
				Field:    key,
				Message:  fmt.Sprintf("field %q holds a nested object where a flat value was expected", key),
			})
		case []any:
			for _, item := range v {
				if _, nested := item.(map[string]any); nested {
					issues = append(issues, Issue{
						Category: CategoryStructure,
						Severity: SeverityWarning,
						Kind:     "nested_property",
						Person:   rec.ID,
						Field:    key,
						Message:  fmt.Sprintf("list field %q holds nested objects where flat values were expected", key),
					})
					break
				}
			}
		}
	}
	return issues
}

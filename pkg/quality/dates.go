package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/prentissw/charted-roots/pkg/records"
)

// DateStyle selects how strictly date strings are validated. Dates stay
// free-form strings; calendar arithmetic is out of scope.
type DateStyle int

const (
	// DateFlexible accepts years, ISO dates, circa markers and ranges.
	DateFlexible DateStyle = iota
	// DateISO requires ISO-8601 (YYYY-MM-DD, partials only if configured).
	DateISO
	// DateGEDCOM requires GEDCOM date syntax (12 JAN 1850, ABT 1850,
	// BET 1850 AND 1860).
	DateGEDCOM
)

var (
	isoFullRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoPartialRe = regexp.MustCompile(`^\d{4}(-\d{2})?$`)
	isoLooseRe   = regexp.MustCompile(`^\d{4}(-\d{1,2}(-\d{1,2})?)?$`)

	gedcomDayRe  = regexp.MustCompile(`^(\d{1,2} )?(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC) \d{3,4}$`)
	gedcomYearRe = regexp.MustCompile(`^\d{3,4}$`)

	yearRe      = regexp.MustCompile(`^\d{1,4}s?( BC| BCE| AD| CE)?$`)
	flexRangeRe = regexp.MustCompile(`^(.+?)\s*[-–]\s*(.+)$`)
)

// validDate checks one date string against the configured style. Empty
// strings are always fine — absence is not a quality problem.
func (a *Analyzer) validDate(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return true
	}

	if a.cfg.AllowCirca {
		for _, prefix := range []string{"circa ", "c. ", "ca. ", "c ", "ca ", "about ", "abt ", "~"} {
			lower := strings.ToLower(v)
			if strings.HasPrefix(lower, prefix) {
				return a.validDateCore(strings.TrimSpace(v[len(prefix):]))
			}
		}
	}

	if a.cfg.AllowRanges {
		if a.cfg.DateStyle == DateGEDCOM {
			upper := strings.ToUpper(v)
			if strings.HasPrefix(upper, "BET ") {
				parts := strings.SplitN(upper[4:], " AND ", 2)
				return len(parts) == 2 && a.validDateCore(parts[0]) && a.validDateCore(parts[1])
			}
		} else if m := flexRangeRe.FindStringSubmatch(v); m != nil && !isoLooseRe.MatchString(v) {
			return a.validDateCore(m[1]) && a.validDateCore(m[2])
		}
	}

	return a.validDateCore(v)
}

func (a *Analyzer) validDateCore(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	switch a.cfg.DateStyle {
	case DateISO:
		if isoFullRe.MatchString(v) {
			return true
		}
		return a.cfg.AllowPartialDates && isoPartialRe.MatchString(v)
	case DateGEDCOM:
		upper := strings.ToUpper(v)
		for _, prefix := range []string{"ABT ", "EST ", "CAL ", "AFT ", "BEF "} {
			if strings.HasPrefix(upper, prefix) {
				upper = upper[len(prefix):]
				break
			}
		}
		if gedcomDayRe.MatchString(upper) {
			return true
		}
		return a.cfg.AllowPartialDates && gedcomYearRe.MatchString(upper)
	default:
		if a.cfg.RequireLeadingZeros {
			if isoLooseRe.MatchString(v) && !isoPartialRe.MatchString(v) && !isoFullRe.MatchString(v) {
				return false
			}
		}
		if isoLooseRe.MatchString(v) || yearRe.MatchString(v) {
			return true
		}
		upper := strings.ToUpper(v)
		return gedcomDayRe.MatchString(upper)
	}
}

func (a *Analyzer) checkDates(rec *records.PersonRecord) []Issue {
	var issues []Issue
	add := func(field, value string) {
		if a.validDate(value) {
			return
		}
		issues = append(issues, Issue{
			Category: CategoryDates,
			Severity: SeverityWarning,
			Kind:     "invalid_date",
			Person:   rec.ID,
			Field:    field,
			Message:  fmt.Sprintf("date %q does not match the configured format", value),
		})
	}
	add("born", rec.Born)
	add("died", rec.Died)
	for _, ev := range rec.Events {
		add("event:"+string(ev.Type), ev.Date)
	}
	return issues
}

// Package mentions provides a runtime place-name dictionary using
// Aho-Corasick. One automaton built from every place label and alias serves
// both exact lookup and O(n) scanning of document text for unlinked place
// mentions.
package mentions

import (
	"strings"
	"unicode"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/prentissw/charted-roots/pkg/records"
)

// NormalizeRaw cleans and lowercases text for matching.
func NormalizeRaw(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for _, ch := range s {
		c := unicode.ToLower(ch)

		// Curly apostrophe -> straight
		if c == '’' {
			out.WriteRune('\'')
			continue
		}

		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '\'' {
			out.WriteRune(c)
		} else {
			out.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(out.String()), " ")
}

// StopWords filtered during tokenization. Heavy on the connectives that show
// up inside place strings ("Isle of Skye", "City of London").
var StopWords = map[string]bool{
	"the": true, "of": true, "and": true, "a": true, "an": true,
	"at": true, "in": true, "on": true, "near": true, "by": true,
	"upon": true, "under": true, "over": true, "la": true, "le": true,
	"de": true, "del": true, "von": true, "van": true,
}

// TokenizeNorm splits and normalizes, filtering stop words.
func TokenizeNorm(text string) []string {
	normalized := NormalizeRaw(text)
	words := strings.Fields(normalized)

	result := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) > 0 && !StopWords[w] {
			result = append(result, w)
		}
	}
	return result
}

// PlaceInfo is the dictionary's view of one place.
type PlaceInfo struct {
	ID      records.PlaceID
	Name    string
	Aliases []string
}

// Dictionary matches place surface forms in text.
type Dictionary struct {
	ac ahocorasick.AhoCorasick

	// Pattern index -> place ids (several places may share a spelling)
	patternToIDs [][]records.PlaceID

	// Normalized pattern -> pattern index
	patternIndex map[string]int

	idToInfo map[records.PlaceID]*PlaceInfo
	patterns []string
}

// Compile builds a dictionary from place records. Labels and aliases are
// normalized; single stop words never become patterns.
func Compile(places []records.PlaceRecord) *Dictionary {
	d := &Dictionary{
		patternIndex: make(map[string]int),
		idToInfo:     make(map[records.PlaceID]*PlaceInfo),
	}

	for i := range places {
		p := &places[i]
		d.idToInfo[p.ID] = &PlaceInfo{ID: p.ID, Name: p.Name, Aliases: append([]string(nil), p.Aliases...)}

		surfaces := append([]string{p.Name}, p.Aliases...)
		for _, surface := range surfaces {
			key := NormalizeRaw(surface)
			if key == "" || StopWords[key] {
				continue
			}
			if idx, exists := d.patternIndex[key]; exists {
				d.patternToIDs[idx] = appendUniqueID(d.patternToIDs[idx], p.ID)
			} else {
				idx := len(d.patterns)
				d.patterns = append(d.patterns, key)
				d.patternIndex[key] = idx
				d.patternToIDs = append(d.patternToIDs, []records.PlaceID{p.ID})
			}
		}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	d.ac = builder.Build(d.patterns)

	return d
}

func appendUniqueID(ids []records.PlaceID, id records.PlaceID) []records.PlaceID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// Lookup resolves a surface form to its candidate places, exact dictionary
// lookup only.
func (d *Dictionary) Lookup(surface string) []records.PlaceID {
	idx, exists := d.patternIndex[NormalizeRaw(surface)]
	if !exists {
		return nil
	}
	return append([]records.PlaceID(nil), d.patternToIDs[idx]...)
}

// Info returns the dictionary entry for a place id.
func (d *Dictionary) Info(id records.PlaceID) *PlaceInfo {
	return d.idToInfo[id]
}

// Match is one detected place mention.
type Match struct {
	Start       int // byte offset
	End         int
	MatchedText string
	PlaceIDs    []records.PlaceID
}

// Scan finds every place mention in text.
func (d *Dictionary) Scan(text string) []Match {
	normalized := strings.ToLower(text)

	found := d.ac.FindAll(normalized)
	result := make([]Match, 0, len(found))
	for _, m := range found {
		result = append(result, Match{
			Start:       m.Start(),
			End:         m.End(),
			MatchedText: text[m.Start():m.End()],
			PlaceIDs:    append([]records.PlaceID(nil), d.patternToIDs[m.Pattern()]...),
		})
	}
	return result
}

// LinkPerson scans a person's raw event place strings against the
// dictionary and fills PlaceID on every event whose string resolves to
// exactly one place. Ambiguous matches stay unlinked; guessing belongs to a
// human. Returns the number of events linked.
func (d *Dictionary) LinkPerson(rec *records.PersonRecord) int {
	linked := 0
	for i := range rec.Events {
		ev := &rec.Events[i]
		if ev.PlaceID != "" || ev.Place == "" {
			continue
		}
		candidates := d.Lookup(ev.Place)
		if len(candidates) == 0 {
			// Try the leading comma component: "Springfield, USA" should
			// resolve against "Springfield".
			first, _, cut := strings.Cut(ev.Place, ",")
			if cut {
				candidates = d.Lookup(first)
			}
		}
		if len(candidates) == 1 {
			ev.PlaceID = candidates[0]
			linked++
		}
	}
	return linked
}

// References extracts mention facts from a person after a best-effort link
// pass, for the quality analyzer's unresolved-mention counting.
func (d *Dictionary) References(rec *records.PersonRecord) []records.PlaceReference {
	var refs []records.PlaceReference
	for _, ev := range rec.Events {
		if ev.Place == "" && ev.PlaceID == "" {
			continue
		}
		refs = append(refs, records.PlaceReference{
			PersonID: rec.ID,
			Type:     records.RefTypeForEvent(ev.Type),
			RawValue: ev.Place,
			PlaceID:  ev.PlaceID,
			IsLinked: ev.PlaceID != "",
		})
	}
	return refs
}

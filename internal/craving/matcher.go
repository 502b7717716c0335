package craving

import "sort"

// match is one phrase occurrence. start/end are token indices (end
// exclusive); startChar/endChar are byte offsets in the normalized text.
type match struct {
	label     string
	start     int
	end       int
	startChar int
	endChar   int
}

type phrase struct {
	label string
	words [][]string
}

// phraseMatcher finds labelled multi-word phrases over a token stream,
// comparing words through their singular forms.
type phraseMatcher struct {
	phrases []phrase
}

func newPhraseMatcher() *phraseMatcher {
	return &phraseMatcher{}
}

// add registers every pattern under label. Patterns are plain lowercase text.
func (m *phraseMatcher) add(label string, patterns ...string) {
	for _, p := range patterns {
		toks := tokenize(normalize(p))
		if len(toks) == 0 {
			continue
		}
		words := make([][]string, len(toks))
		for i, t := range toks {
			words[i] = t.forms
		}
		m.phrases = append(m.phrases, phrase{label: label, words: words})
	}
}

// find returns every occurrence ordered by start position, longest first
// among matches sharing a start.
func (m *phraseMatcher) find(tokens []token) []match {
	var out []match
	for i := range tokens {
		for _, p := range m.phrases {
			if i+len(p.words) > len(tokens) {
				continue
			}
			ok := true
			for j, w := range p.words {
				if !sameWord(tokens[i+j].forms, w) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			last := tokens[i+len(p.words)-1]
			out = append(out, match{
				label:     p.label,
				start:     i,
				end:       i + len(p.words),
				startChar: tokens[i].start,
				endChar:   last.end,
			})
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].startChar != out[b].startChar {
			return out[a].startChar < out[b].startChar
		}
		return out[a].endChar-out[a].startChar > out[b].endChar-out[b].startChar
	})
	return out
}

// first returns the earliest match, if any.
func (m *phraseMatcher) first(tokens []token) (match, bool) {
	found := m.find(tokens)
	if len(found) == 0 {
		return match{}, false
	}
	return found[0], true
}

// longestMatches keeps, in start order, each match that does not overlap a
// previously kept one. The input must be ordered as find returns it, so
// "chocolate milkshake" wins over "chocolate" and "milkshake".
func longestMatches(matches []match) []match {
	var kept []match
	for _, m := range matches {
		overlaps := false
		for _, k := range kept {
			if m.startChar < k.endChar && m.endChar > k.startChar {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, m)
		}
	}
	return kept
}

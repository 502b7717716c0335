package craving

import "strings"

// span is an inclusive byte range of normalized text.
type span struct {
	start, end int
}

func (s span) covers(pos int) bool {
	return s.start <= pos && pos <= s.end
}

// negation is the resolved negation scope of one utterance.
type negation struct {
	tokens map[int]bool
	spans  []span
}

func resolveNegation(text string, tokens []token) negation {
	return negation{
		tokens: negatedTokens(tokens),
		spans:  exclusionSpans(text),
	}
}

// negated reports whether any token of m is in scope, or m starts inside an
// exclusion-phrase span.
func (n negation) negated(m match) bool {
	for i := m.start; i < m.end; i++ {
		if n.tokens[i] {
			return true
		}
	}
	for _, s := range n.spans {
		if s.covers(m.startChar) {
			return true
		}
	}
	return false
}

// negatedTokens marks the token indices under a negation cue or verb, then
// clears the window after any positive signal. Determiner cues and verbs
// cover a short window; clause cues cover the rest of the clause.
func negatedTokens(tokens []token) map[int]bool {
	negated := make(map[int]bool)

	for i, t := range tokens {
		switch {
		case clauseCues[t.text]:
			markClause(tokens, i, negated)
		case negationCues[t.text] || negationVerbs[t.text]:
			markWindow(tokens, i, cueScope, negated)
		}
	}

	for i, t := range tokens {
		if !positiveSignals[t.text] && !(t.text == "how" && i+1 < len(tokens) && tokens[i+1].text == "about") {
			continue
		}
		for j := i; j < len(tokens) && j < i+positiveScope; j++ {
			delete(negated, j)
		}
	}

	return negated
}

// inScope reports whether tokens[j] continues the clause of tokens[i].
func inScope(tokens []token, i, j int) bool {
	return tokens[j].sentence == tokens[i].sentence && !scopeBreakers[tokens[j].text]
}

func markWindow(tokens []token, i, size int, negated map[int]bool) {
	for j := i + 1; j < len(tokens) && j <= i+size; j++ {
		if !inScope(tokens, i, j) {
			return
		}
		negated[j] = true
	}
}

// markClause negates from the cue to the next breaker. When the negated head
// is neutral the scope stops at the head.
func markClause(tokens []token, i int, negated map[int]bool) {
	for j := i + 1; j < len(tokens) && inScope(tokens, i, j); j++ {
		negated[j] = true
		if hedges[tokens[j].text] {
			continue
		}
		if neutralHeads[tokens[j].text] {
			return
		}
		for k := j + 1; k < len(tokens) && inScope(tokens, i, k); k++ {
			negated[k] = true
		}
		return
	}
}

// exclusionSpans returns, for every exclusion phrase occurrence, the range
// from the phrase start to at most exclusionTail bytes past its end, cut at
// the first stop found after the phrase.
func exclusionSpans(text string) []span {
	var spans []span
	for _, phrase := range exclusionPhrases {
		for from := 0; from < len(text); {
			rel := strings.Index(text[from:], phrase)
			if rel < 0 {
				break
			}
			pos := from + rel
			after := pos + len(phrase)

			end := after + exclusionTail
			for _, stop := range exclusionStops {
				if i := strings.Index(text[after:], stop); i >= 0 && after+i < end {
					end = after + i
				}
			}

			spans = append(spans, span{start: pos, end: end})
			from = pos + 1
		}
	}
	return spans
}

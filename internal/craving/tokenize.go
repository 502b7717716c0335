package craving

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// token is one word or punctuation mark of a normalized utterance. Offsets
// are byte positions in the normalized text.
type token struct {
	text     string
	start    int
	end      int
	sentence int
	forms    []string
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// normalize lowercases text and folds typographic apostrophes so every
// offset computed on the result is comparable.
func normalize(text string) string {
	return apostrophes.Replace(strings.ToLower(text))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// tokenize splits normalized text into words and single punctuation marks.
// Contractions are split the usual way: "don't" -> "do" "n't",
// "i'm" -> "i" "'m".
func tokenize(text string) []token {
	var (
		tokens   []token
		sentence int
	)

	emit := func(start, end int) {
		tokens = append(tokens, token{
			text:     text[start:end],
			start:    start,
			end:      end,
			sentence: sentence,
			forms:    wordForms(text[start:end]),
		})
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])

		switch {
		case unicode.IsSpace(r):
			i += size

		case isWordRune(r):
			start := i
			for i < len(text) {
				r, size := utf8.DecodeRuneInString(text[i:])
				if isWordRune(r) {
					i += size
					continue
				}
				// Keep an apostrophe that sits between two letters.
				if r == '\'' && i+1 < len(text) {
					next, _ := utf8.DecodeRuneInString(text[i+1:])
					if unicode.IsLetter(next) {
						i += size
						continue
					}
				}
				break
			}
			splitContraction(text, start, i, emit)

		default:
			emit(i, i+size)
			if r == '.' || r == '!' || r == '?' {
				sentence++
			}
			i += size
		}
	}

	return tokens
}

func splitContraction(text string, start, end int, emit func(start, end int)) {
	word := text[start:end]
	if strings.HasSuffix(word, "n't") && len(word) > 3 {
		emit(start, end-3)
		emit(end-3, end)
		return
	}
	if apos := strings.IndexByte(word, '\''); apos > 0 {
		emit(start, start+apos)
		emit(start+apos, end)
		return
	}
	emit(start, end)
}

// wordForms returns the surface form plus plausible singulars, so
// "mushrooms" meets "mushroom" and "berries" meets "berry".
func wordForms(w string) []string {
	forms := []string{w}
	if len(w) <= 3 {
		return forms
	}

	switch {
	case strings.HasSuffix(w, "ss"):
	case strings.HasSuffix(w, "ies"):
		forms = append(forms, w[:len(w)-3]+"y", w[:len(w)-1])
	case strings.HasSuffix(w, "es"):
		forms = append(forms, w[:len(w)-2], w[:len(w)-1])
	case strings.HasSuffix(w, "s"):
		forms = append(forms, w[:len(w)-1])
	}
	return forms
}

// sameWord reports whether two words share any form.
func sameWord(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

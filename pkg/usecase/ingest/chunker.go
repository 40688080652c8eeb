package ingest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxChunkSize is the character budget for one prose chunk.
const DefaultMaxChunkSize = 200

// Chunker splits long-form text into bounded-size, sentence-respecting
// segments. The size budget is a soft target: a single sentence longer than
// MaxChunkSize is emitted whole rather than split mid-sentence.
type Chunker struct {
	MaxChunkSize int
}

func NewChunker(maxChunkSize int) *Chunker {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	return &Chunker{MaxChunkSize: maxChunkSize}
}

// Split chunks the text by greedily accumulating sentences until the next
// sentence would exceed the budget. Output chunks are non-empty and trimmed;
// joining them with single spaces restores the sentence sequence.
func (c *Chunker) Split(text string) []string {
	sentences := SplitSentences(text)

	var chunks []string
	var current string
	for _, sentence := range sentences {
		switch {
		case current == "":
			current = sentence
		case len(current)+1+len(sentence) <= c.MaxChunkSize:
			current += " " + sentence
		default:
			chunks = append(chunks, current)
			current = sentence
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}

// Common abbreviations in clinical guideline text that end with a period but
// do not terminate a sentence.
var abbreviations = map[string]bool{
	"dr":   true,
	"mr":   true,
	"mrs":  true,
	"ms":   true,
	"prof": true,
	"fig":  true,
	"tab":  true,
	"no":   true,
	"vs":   true,
	"e.g":  true,
	"i.e":  true,
	"et":   true,
	"al":   true,
	"etc":  true,
	"approx": true,
	"resp":   true,
	"min":    true,
	"max":    true,
}

// SplitSentences performs abbreviation-aware sentence boundary detection.
// A '.', '!' or '?' ends a sentence when it is followed by whitespace and the
// preceding token is not a known abbreviation, a single capital (initials),
// or part of a decimal number.
func SplitSentences(text string) []string {
	var sentences []string
	var buf strings.Builder

	flush := func() {
		s := strings.TrimSpace(buf.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		buf.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		buf.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}

		// Must be followed by whitespace or end of input.
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		if r == '.' && !endsSentence(buf.String()) {
			continue
		}

		flush()
	}
	flush()

	return sentences
}

var decimalTail = regexp.MustCompile(`\d\.$`)

// endsSentence decides whether a buffer ending in '.' is a real sentence
// boundary, by inspecting the token in front of the period.
func endsSentence(s string) bool {
	if decimalTail.MatchString(s) {
		return false
	}

	trimmed := strings.TrimSuffix(s, ".")
	idx := strings.LastIndexFunc(trimmed, unicode.IsSpace)
	word := trimmed[idx+1:]
	word = strings.ToLower(strings.Trim(word, "()[]\"'"))

	if abbreviations[word] {
		return false
	}

	// Single letter followed by a period is almost always an initial or an
	// enumeration marker ("A. left ventricle").
	if utf8.RuneCountInString(word) == 1 {
		return false
	}

	return true
}

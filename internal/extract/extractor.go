package extract

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultMinWordLength is the shortest token kept by Extract
const DefaultMinWordLength = 2

var (
	wordRe       = regexp.MustCompile(`[a-zA-Z][a-zA-Z'\-]*[a-zA-Z'\-]|[a-zA-Z]`)
	styleBlockRe = regexp.MustCompile(`(?s)\[\[module CSS\]\](.*?)\[\[/module\]\]`)
	directiveRe  = regexp.MustCompile(`\[\[(.*?)\]\]`)
	formattingRe = regexp.MustCompile(`\*\*(.*?)\*\*|//(.*?)//|__(.*?)__|--(.*?)--`)
	delimiterRe  = regexp.MustCompile(`\{\{(.*?)\}\}|@@(.*?)@@`)
)

// Extract returns the unique lowercase words of text that are at least
// minLen characters long, sorted lexicographically. Words inside CSS
// module blocks are collected with FromStyleBlock rules only.
func Extract(text string, minLen int) []string {
	if minLen < 1 {
		minLen = 1
	}

	var tokens []string

	// Style blocks first: their words follow CSS rules and must not be
	// seen again by the generic pass.
	for _, m := range styleBlockRe.FindAllStringSubmatch(text, -1) {
		tokens = append(tokens, FromStyleBlock(m[1])...)
	}
	text = styleBlockRe.ReplaceAllString(text, " ")

	text = unwrap(directiveRe, text)
	text = unwrap(formattingRe, text)
	text = unwrap(delimiterRe, text)

	tokens = append(tokens, Tokenize(text)...)

	seen := make(map[string]struct{}, len(tokens))
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		w := strings.ToLower(tok)
		if len(w) < minLen {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}

	sort.Strings(words)
	return words
}

// Tokenize returns every word-pattern match in text, unmodified.
// A token is a single letter, or a letter followed by letters,
// apostrophes or hyphens.
func Tokenize(text string) []string {
	return wordRe.FindAllString(text, -1)
}

// unwrap replaces every match of re with the first participating
// capture group, padded with spaces so neighbouring words stay apart.
func unwrap(re *regexp.Regexp, s string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*len(matches))
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		b.WriteByte(' ')
		for g := 2; g+1 < len(m); g += 2 {
			if m[g] >= 0 {
				b.WriteString(s[m[g]:m[g+1]])
				break
			}
		}
		b.WriteByte(' ')
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

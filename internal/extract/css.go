package extract

import (
	"regexp"
	"strings"
)

var (
	cssCommentRe     = regexp.MustCompile(`(?s)/\*(.*?)\*/`)
	cssDeclarationRe = regexp.MustCompile(`([a-zA-Z\-]+)\s*:\s*([^;]+);`)
	cssSelectorRe    = regexp.MustCompile(`[.#]?[a-zA-Z][a-zA-Z0-9\-_]*`)
	cssPartRe        = regexp.MustCompile(`[a-zA-Z][a-z]*`)
	cssHexColorRe    = regexp.MustCompile(`"[^"]*"|'[^']*'|#(?:[0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{3,4})\b`)
)

// cssFunctionNames are value tokens that name CSS functions, not words.
var cssFunctionNames = map[string]struct{}{
	"rgb":  {},
	"rgba": {},
	"hsl":  {},
	"hsla": {},
	"url":  {},
}

// FromStyleBlock extracts raw word tokens from stylesheet text: words in
// comments, property names, keyword values and selector name parts.
// Colour function names and hex colours in values are skipped.
// Tokens are returned as found; callers lowercase and filter them.
func FromStyleBlock(css string) []string {
	var tokens []string

	for _, m := range cssCommentRe.FindAllStringSubmatch(css, -1) {
		tokens = append(tokens, Tokenize(m[1])...)
	}
	css = cssCommentRe.ReplaceAllString(css, " ")

	for _, m := range cssDeclarationRe.FindAllStringSubmatch(css, -1) {
		tokens = append(tokens, Tokenize(m[1])...)
		value := stripHexColors(m[2])
		for _, tok := range Tokenize(value) {
			if _, skip := cssFunctionNames[strings.ToLower(tok)]; skip {
				continue
			}
			tokens = append(tokens, tok)
		}
	}

	// Values are gone from here on, so function names and hex colours
	// cannot come back through the selector pass.
	css = cssDeclarationRe.ReplaceAllString(css, "${1} ")

	for _, sel := range cssSelectorRe.FindAllString(css, -1) {
		sel = strings.TrimLeft(sel, ".#")
		tokens = append(tokens, cssPartRe.FindAllString(sel, -1)...)
	}

	return tokens
}

// stripHexColors blanks #rgb, #rgba, #rrggbb and #rrggbbaa colours.
// Quoted strings match first, so a '#' inside content text is kept.
func stripHexColors(value string) string {
	return cssHexColorRe.ReplaceAllStringFunc(value, func(m string) string {
		if m[0] == '#' {
			return " "
		}
		return m
	})
}

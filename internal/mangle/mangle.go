// Package mangle transforms source identifiers into target-language-legal
// names (spec.md §6). Mangling is injective by construction: every character
// class maps to a distinct, unambiguous spelling, so distinct inputs never
// collide (spec.md §8 property 6).
package mangle

import (
	"fmt"
	"regexp"
	"strings"
)

// reserved is the target language's reserved-word set. Names colliding with
// one are wrapped rather than renamed, so the original identity stays legible
// in generated source.
var reserved = map[string]bool{
	"abstract": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "default": true, "deferred": true, "do": true, "dynamic": true,
	"else": true, "enum": true, "export": true, "extends": true, "extension": true,
	"external": true, "factory": true, "false": true, "final": true, "finally": true,
	"for": true, "function": true, "get": true, "hide": true, "if": true,
	"implements": true, "import": true, "in": true, "interface": true, "is": true,
	"late": true, "library": true, "mixin": true, "new": true, "null": true,
	"on": true, "operator": true, "part": true, "required": true, "rethrow": true,
	"return": true, "set": true, "show": true, "static": true, "super": true,
	"switch": true, "sync": true, "this": true, "throw": true, "true": true,
	"try": true, "typedef": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true,
}

// charSpellings maps individual source characters to their named target
// spelling (spec.md §6). Longest-match-first doesn't matter here: every key
// is exactly one rune.
var charSpellings = map[rune]string{
	'-': "_", '_': "$UNDERSCORE_", '$': "$DOLLAR_", ':': "$COLON_",
	'+': "$PLUS_", '>': "$GT_", '<': "$LT_", '=': "$EQ_", '~': "$TILDE_",
	'!': "$BANG_", '@': "$CIRCA_", '#': "$SHARP_", '\'': "$SINGLEQUOTE_",
	'"': "$DOUBLEQUOTE_", '%': "$PERCENT_", '^': "$CARET_", '&': "$AMPERSAND_",
	'*': "$STAR_", '|': "$BAR_", '{': "$LBRACE_", '}': "$RBRACE_",
	'[': "$LBRACK_", ']': "$RBRACK_", '/': "$SLASH_", '\\': "$BSLASH_",
	'?': "$QMARK_",
}

var autoGensymRe = regexp.MustCompile(`^__(\d+)$`)

// Name mangles a single source identifier into its target spelling.
func Name(src string) string {
	if src == "__auto__" {
		return "$AUTO_"
	}
	if m := autoGensymRe.FindStringSubmatch(src); m != nil {
		return "$" + m[1] + "_"
	}

	var b strings.Builder
	runes := []rune(src)
	for i, r := range runes {
		if i == 0 && r == '-' {
			b.WriteString("$_")
			continue
		}
		if sp, ok := charSpellings[r]; ok {
			b.WriteString(sp)
		} else if isIdentRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteString(fmt.Sprintf("$u%x_", r))
		}
	}

	out := b.String()
	if reserved[out] {
		out = "$" + out + "_"
	}
	return out
}

func isIdentRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// IsReserved reports whether name collides with a target-language keyword.
func IsReserved(name string) bool { return reserved[name] }

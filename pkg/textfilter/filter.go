// Package textfilter softens model-generated narration for
// family-friendly sessions. The engine never produces profanity itself;
// this guards against what the narrator model writes.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps profanity to its family-friendly substitute. Words
// with no good substitute map to a censor marker. Longer phrases must
// come before their substrings when applied, so application order is
// by descending key length.
var replacements = map[string]string{
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"bullshit":     "baloney",
	"horseshit":    "nonsense",
	"shithead":     "jerk",
	"dickhead":     "jerk",
	"dumbass":      "dummy",
	"jackass":      "jerk",
	"asshole":      "jerk",
	"bastard":      "jerk",
	"bitch":        "jerk",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"prick":        "jerk",
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"crap":         "crud",
	"piss":         "ticked",
	"cock":         "[censored]",
	"dick":         "jerk",
	"tits":         "[censored]",
	"ass":          "butt",
}

// Filter rewrites profanity in narration text while preserving the
// original casing.
type Filter struct {
	words   []string // descending length, so compounds match first
	regexes map[string]*regexp.Regexp
	caser   cases.Caser
}

// New compiles the word patterns once; a Filter is safe for concurrent use.
func New() *Filter {
	f := &Filter{
		regexes: make(map[string]*regexp.Regexp, len(replacements)),
		caser:   cases.Title(language.English),
	}
	for word := range replacements {
		f.words = append(f.words, word)
		f.regexes[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	// Longest first so "bullshit" is rewritten before "shit" can match
	// inside it.
	for i := 1; i < len(f.words); i++ {
		for j := i; j > 0 && len(f.words[j]) > len(f.words[j-1]); j-- {
			f.words[j], f.words[j-1] = f.words[j-1], f.words[j]
		}
	}
	return f
}

// Clean returns text with all known profanity replaced.
func (f *Filter) Clean(text string) string {
	result := text
	for _, word := range f.words {
		replacement := replacements[word]
		result = f.regexes[word].ReplaceAllStringFunc(result, func(match string) string {
			return f.matchCase(match, replacement)
		})
	}
	return result
}

// IsClean reports whether text contains no known profanity.
func (f *Filter) IsClean(text string) bool {
	for _, word := range f.words {
		if f.regexes[word].MatchString(text) {
			return false
		}
	}
	return true
}

// matchCase shapes replacement to the casing of the matched word.
func (f *Filter) matchCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return replacement
	}
	if f.caser.String(strings.ToLower(original)) == original {
		return f.caser.String(replacement)
	}

	// Mixed case: mirror the original rune by rune.
	out := make([]rune, 0, len(replacement))
	orig := []rune(original)
	for i, r := range replacement {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

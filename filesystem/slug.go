package filesystem

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	NoteExt      = ".txt"
	MaxSlugRunes = 80
	Untitled     = "untitled"
)

// space lists every rune unicode.IsSpace reports plus the ASCII separators
// \x1c-\x1f, which RE2's \s leaves out.
const space = `\s\v\x{85}\x{1c}-\x{1f}\p{Z}`

var (
	disallowed = regexp.MustCompile(`[^\p{L}\p{N}_` + space + `-]`)
	spaceRun   = regexp.MustCompile(`[` + space + `]+`)
	underRun   = regexp.MustCompile(`_+`)
)

// Slugify maps a note title to its file name. It is a pure function of the
// title: accents are folded, the result is lower-cased, anything that is not a
// letter, digit, underscore, hyphen or whitespace is dropped, whitespace runs
// become a single underscore and the stem is cut to MaxSlugRunes runes.
//
// Distinct titles may share a slug ("Café!" and "cafe" both give "cafe.txt").
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimFunc(foldAccents(title), isSpace))
	s = disallowed.ReplaceAllString(s, "")
	s = spaceRun.ReplaceAllString(s, "_")
	s = underRun.ReplaceAllString(s, "_")
	if r := []rune(s); len(r) > MaxSlugRunes {
		s = string(r[:MaxSlugRunes])
	}
	if s == "" {
		s = Untitled
	}
	return s + NoteExt
}

// DisplayTitle rebuilds a title from a note file name by turning underscores
// into spaces and title-casing the words. The mapping is lossy: "my note",
// "My Note!" and "MY NOTE" all come back as "My Note". Only the first letter
// of each word is upper-cased, so "x2y" shows as "X2y".
func DisplayTitle(file string) string {
	stem := strings.TrimSuffix(file, NoteExt)
	return cases.Title(language.Und).String(strings.ReplaceAll(stem, "_", " "))
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

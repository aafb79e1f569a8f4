package internal

import (
	"crypto/md5"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	softHyphen = "\u00ad"
	// trimCutset matches the characters stripped by the trim modifier
	trimCutset = " \t\n\r\x00\x0B"
)

var (
	wordPattern    = regexp.MustCompile(`[\p{L}'\-]+`)
	slugDropChars  = regexp.MustCompile(`[^a-z0-9]+`)
	stripPolicy    = bluemonday.StrictPolicy()
	quoteUnescaper = strings.NewReplacer("&#39;", "'", "&#34;", `"`)
	loremIpsumText = strings.Join([]string{
		"Donec ullamcorper nulla non metus auctor fringilla.",
		"Vestibulum id ligula porta felis euismod semper.",
		"Praesent commodo cursus magna, vel scelerisque nisl consectetur.",
		"Fusce dapibus, tellus ac cursus commodo.",
	}, " ")
)

// shorten keeps the first words words, or else the first chars characters
func shorten(s string, words, chars int) string {
	if words > 0 {
		parts := strings.Split(s, " ")
		if len(parts) > words {
			return strings.Join(parts[:words], " ")
		}
		return s
	}
	if chars > 0 {
		r := []rune(s)
		if len(r) > chars {
			return string(r[:chars])
		}
	}
	return s
}

func htmlSafe(s string) string {
	return strings.ReplaceAll(s, `"`, "&quot;")
}

func jsSafe(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

func dbSafe(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func htmlEntities(s string) string {
	return html.EscapeString(s)
}

func wordCount(s string) int {
	return len(wordPattern.FindAllString(strings.ReplaceAll(s, softHyphen, ""), -1))
}

// stripTags removes markup and keeps entities escaped. Only the quote
// escapes the sanitizer adds to plain text are reverted.
func stripTags(s string) string {
	return quoteUnescaper.Replace(stripPolicy.Sanitize(s))
}

// urlName turns text into a lowercase ASCII slug
func urlName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	slug := slugDropChars.ReplaceAllString(strings.ToLower(folded), SlugSeparator)
	return strings.Trim(slug, SlugSeparator)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func gravatarHash(email string) string {
	return md5Hex(strings.ToLower(strings.TrimSpace(email)))
}

func fixURL(s string) string {
	if s == "" {
		return FixURLEmpty
	}
	if strings.HasPrefix(s, FixURLPrefix) {
		return s
	}
	return FixURLScheme + s
}

// setLang replaces the leading "/xx" language segment of a path
func setLang(path, lang string) string {
	rest := ""
	if r := []rune(path); len(r) > LangPrefixLength {
		rest = string(r[LangPrefixLength:])
	}
	return LangPathPrefix + lang + rest
}

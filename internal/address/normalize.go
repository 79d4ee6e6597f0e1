// Package address normalizes Vietnamese free-text addresses, scores them
// against each other and serves the province/district/ward hierarchy.
package address

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// diacritics folds Vietnamese vowels and đ to ASCII. Input is lowercase NFC.
var diacritics = strings.NewReplacer(
	"à", "a", "á", "a", "ả", "a", "ã", "a", "ạ", "a",
	"ă", "a", "ằ", "a", "ắ", "a", "ẳ", "a", "ẵ", "a", "ặ", "a",
	"â", "a", "ầ", "a", "ấ", "a", "ẩ", "a", "ẫ", "a", "ậ", "a",
	"è", "e", "é", "e", "ẻ", "e", "ẽ", "e", "ẹ", "e",
	"ê", "e", "ề", "e", "ế", "e", "ể", "e", "ễ", "e", "ệ", "e",
	"ì", "i", "í", "i", "ỉ", "i", "ĩ", "i", "ị", "i",
	"ò", "o", "ó", "o", "ỏ", "o", "õ", "o", "ọ", "o",
	"ô", "o", "ồ", "o", "ố", "o", "ổ", "o", "ỗ", "o", "ộ", "o",
	"ơ", "o", "ờ", "o", "ớ", "o", "ở", "o", "ỡ", "o", "ợ", "o",
	"ù", "u", "ú", "u", "ủ", "u", "ũ", "u", "ụ", "u",
	"ư", "u", "ừ", "u", "ứ", "u", "ử", "u", "ữ", "u", "ự", "u",
	"ỳ", "y", "ý", "y", "ỷ", "y", "ỹ", "y", "ỵ", "y",
	"đ", "d",
)

// stopwords are administrative fillers in folded form. They are dropped only
// where a segment of the address starts ("Tỉnh Bến Tre", "..., Việt Nam"), so
// place names that contain the same syllables ("Hà Tĩnh", "Thanh Hóa") survive.
var stopwords = [][]string{
	{"thanh", "pho"},
	{"viet", "nam"},
	{"tinh"},
	{"tp"},
	{"vietnam"},
	{"vn"},
}

// edgePunct is trimmed from both ends of every token.
const edgePunct = ".,();:-\"'"

// StripDiacritics lowercases text and folds Vietnamese diacritics to ASCII.
func StripDiacritics(text string) string {
	return diacritics.Replace(strings.ToLower(norm.NFC.String(text)))
}

// Normalize lowercases, removes administrative stopwords, strips diacritics and
// collapses whitespace. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	return strings.Join(pipeline(text, true), " ")
}

// Clean is Normalize without diacritic folding.
func Clean(text string) string {
	return strings.Join(pipeline(text, false), " ")
}

// Tokens returns the normalized tokens of text.
func Tokens(text string) []string {
	return pipeline(text, true)
}

func pipeline(text string, fold bool) []string {
	lowered := strings.ToLower(norm.NFC.String(text))

	var raw, folded []string
	for _, segment := range strings.Split(lowered, ",") {
		var segRaw, segFolded []string
		for _, tok := range strings.FieldsFunc(segment, unicode.IsSpace) {
			tok = strings.Trim(tok, edgePunct)
			if tok == "" || (utf8.RuneCountInString(tok) == 1 && !unicode.IsDigit([]rune(tok)[0])) {
				continue
			}
			segRaw = append(segRaw, tok)
			segFolded = append(segFolded, diacritics.Replace(tok))
		}

		skip := leadingStopwords(segFolded)
		raw = append(raw, segRaw[skip:]...)
		folded = append(folded, segFolded[skip:]...)
	}

	// Joining segments can line up a new leading stopword ("Thanh, Phố ...").
	skip := leadingStopwords(folded)
	if fold {
		return folded[skip:]
	}
	return raw[skip:]
}

// leadingStopwords returns how many leading tokens are stopwords.
func leadingStopwords(folded []string) int {
	i := 0
	for {
		matched := false
		for _, sw := range stopwords {
			if hasPrefix(folded[i:], sw) {
				i += len(sw)
				matched = true
				break
			}
		}
		if !matched {
			return i
		}
	}
}

func hasPrefix(tokens, prefix []string) bool {
	if len(tokens) < len(prefix) {
		return false
	}
	for i := range prefix {
		if tokens[i] != prefix[i] {
			return false
		}
	}
	return true
}

// internal/morse/morse.go
// Package morse implements the bidirectional character / symbol-string codec.
package morse

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnsupportedChar indicates a character with no entry in the code table
	ErrUnsupportedChar = errors.New("character not in morse table")
	// ErrUnknownPattern indicates a well-formed symbol string with no table entry
	ErrUnknownPattern = errors.New("unknown morse pattern")
	// ErrInvalidSymbol indicates a symbol string containing characters other than '.' and '-'
	ErrInvalidSymbol = errors.New("symbol string must contain only '.' and '-'")
)

// Table maps characters to their dot/dash representation.
// Covers A-Z, 0-9 and a fixed punctuation set. The mapping is a bijection;
// the decode map is derived from it at package init.
var Table = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".",
	'F': "..-.", 'G': "--.", 'H': "....", 'I': "..", 'J': ".---",
	'K': "-.-", 'L': ".-..", 'M': "--", 'N': "-.", 'O': "---",
	'P': ".--.", 'Q': "--.-", 'R': ".-.", 'S': "...", 'T': "-",
	'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-", 'Y': "-.--",
	'Z': "--..",
	'1': ".----", '2': "..---", '3': "...--", '4': "....-", '5': ".....",
	'6': "-....", '7': "--...", '8': "---..", '9': "----.", '0': "-----",
	',': "--..--", '.': ".-.-.-", '?': "..--..", '/': "-..-.",
	'-': "-....-", '(': "-.--.", ')': "-.--.-",
}

var reverse map[string]rune

func init() {
	reverse = make(map[string]rune, len(Table))
	for ch, code := range Table {
		if _, dup := reverse[code]; dup {
			panic(fmt.Sprintf("morse: duplicate code %q in table", code))
		}
		reverse[code] = ch
	}
}

// Encode converts a single character to its symbol string.
// Input is case-folded to upper case before lookup.
func Encode(ch rune) (string, error) {
	code, ok := Table[unicode.ToUpper(ch)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedChar, ch)
	}
	return code, nil
}

// Decode converts a symbol string back to its character.
func Decode(code string) (rune, error) {
	if code == "" {
		return 0, ErrInvalidSymbol
	}
	for _, c := range code {
		if c != '.' && c != '-' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidSymbol, code)
		}
	}
	ch, ok := reverse[code]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPattern, code)
	}
	return ch, nil
}

// EncodeMessage converts text to a symbol stream with single spaces between
// characters and double spaces between words. Unsupported characters are
// skipped; the joined errors report which ones, while the remaining
// characters are still encoded.
func EncodeMessage(text string) (string, error) {
	var out []string
	var errs []error
	words := strings.Split(strings.ToUpper(text), " ")
	for i, word := range words {
		for _, ch := range word {
			code, err := Encode(ch)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, code)
		}
		// Word separator shows up as a double space once the single-space
		// join is applied.
		if i < len(words)-1 {
			out = append(out, "")
		}
	}
	return strings.TrimSpace(strings.Join(out, " ")), errors.Join(errs...)
}

// DecodeMessage converts a symbol stream back to text. A single space ends a
// character and a double space ends a word. Unknown patterns are skipped and
// reported via the joined errors.
func DecodeMessage(message string) (string, error) {
	var decoded strings.Builder
	var errs []error
	var pending strings.Builder
	spaceRun := 0

	flush := func() {
		if pending.Len() == 0 {
			return
		}
		ch, err := Decode(pending.String())
		if err != nil {
			errs = append(errs, err)
		} else {
			decoded.WriteRune(ch)
		}
		pending.Reset()
	}

	for _, c := range message {
		if c != ' ' {
			spaceRun = 0
			pending.WriteRune(c)
			continue
		}
		spaceRun++
		if spaceRun == 1 {
			flush()
		} else if spaceRun == 2 {
			decoded.WriteRune(' ')
		}
	}
	flush()

	return strings.TrimSpace(decoded.String()), errors.Join(errs...)
}

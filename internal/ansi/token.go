package ansi

import (
	"regexp"
	"strconv"
	"strings"
)

// sgrPattern matches ESC [ <digits and separators> m.
var sgrPattern = regexp.MustCompile("\x1b\\[([0-9;]+)m")

// Token is either a literal text run or a parsed SGR control sequence.
type Token struct {
	// Text holds the literal run, or the raw sequence for control tokens.
	Text string
	// Codes holds the parameter codes in order. Nil for literal tokens.
	Codes []int
	// Control reports whether the token is a control sequence.
	Control bool
}

// Tokenize splits text into literal runs and SGR sequences, left to right.
// Empty literal runs are not emitted.
func Tokenize(text string) []Token {
	matches := sgrPattern.FindAllStringSubmatchIndex(text, -1)
	tokens := make([]Token, 0, 2*len(matches)+1)

	last := 0
	for _, m := range matches {
		if m[0] > last {
			tokens = append(tokens, Token{Text: text[last:m[0]]})
		}
		tokens = append(tokens, Token{
			Text:    text[m[0]:m[1]],
			Codes:   parseCodes(text[m[2]:m[3]]),
			Control: true,
		})
		last = m[1]
	}
	if last < len(text) {
		tokens = append(tokens, Token{Text: text[last:]})
	}
	return tokens
}

// parseCodes splits a parameter list on ';'. Empty fields and values that do
// not fit in an int are dropped.
func parseCodes(params string) []int {
	fields := strings.Split(params, ";")
	codes := make([]int, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		codes = append(codes, n)
	}
	return codes
}

// Strip removes recognised SGR sequences and returns the literal text.
func Strip(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, tok := range Tokenize(text) {
		if !tok.Control {
			b.WriteString(tok.Text)
		}
	}
	return b.String()
}

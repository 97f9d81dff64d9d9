package token

import "unicode"

// Token is a contiguous run of non-whitespace text together with its
// byte offsets into the source string.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenizer splits text on Unicode whitespace without normalizing it.
// Training text must survive tokenization byte for byte, so there is no
// lowercasing, no stopword filtering and no token cleanup here.
type Tokenizer struct{}

// NewTokenizer creates a blank, language-agnostic tokenizer
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize splits text into whitespace-delimited tokens with byte offsets
func (t *Tokenizer) Tokenize(text string) []Token {
	var tokens []Token
	start := -1

	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, Token{Text: text[start:i], Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}

	// Don't forget the last token
	if start >= 0 {
		tokens = append(tokens, Token{Text: text[start:], Start: start, End: len(text)})
	}

	return tokens
}

// Align maps a byte range onto exact token boundaries. The range must
// begin precisely at a token start and end precisely at a token end;
// a range that splits a token is a miss (ok=false), never an error.
func Align(tokens []Token, start, end int) (first, last int, ok bool) {
	if start >= end {
		return 0, 0, false
	}

	first, last = -1, -1
	for i, tok := range tokens {
		if tok.Start == start {
			first = i
		}
		if tok.End == end {
			last = i
		}
	}

	if first < 0 || last < 0 || last < first {
		return 0, 0, false
	}
	return first, last, true
}

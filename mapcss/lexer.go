package mapcss

import (
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

type token struct {
	Type   css.TokenType
	Data   string
	Offset int
}

func (tok token) isEOF() bool {
	return tok.Type == css.ErrorToken
}

func (tok token) isDelim(s string) bool {
	return tok.Type == css.DelimToken && tok.Data == s
}

func (tok token) describe() string {
	if tok.isEOF() {
		return "end of input"
	}
	return "\"" + tok.Data + "\""
}

// tokenize splits MapCSS source into CSS tokens. Comments are dropped,
// whitespace is kept since adjacency is significant in selectors.
// The last token is always an ErrorToken marking the end of input.
func tokenize(text string) ([]token, error) {
	lexer := css.NewLexer(parse.NewInputString(text))

	var tokens []token
	offset := 0
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			if err := lexer.Err(); err != nil && err != io.EOF {
				return nil, newSyntaxError(text, offset, "%s", err.Error())
			}
			break
		}

		switch tt {
		case css.BadStringToken:
			return nil, newSyntaxError(text, offset, "unterminated string")
		case css.BadURLToken:
			return nil, newSyntaxError(text, offset, "malformed url()")
		case css.CommentToken:
			if !strings.HasSuffix(string(data), "*/") || len(data) < 4 {
				return nil, newSyntaxError(text, offset, "unterminated comment")
			}
		default:
			tokens = append(tokens, token{Type: tt, Data: string(data), Offset: offset})
		}
		offset += len(data)
	}

	return append(tokens, token{Type: css.ErrorToken, Offset: offset}), nil
}

// unquote strips the quotes of a string token and resolves backslash escapes.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	} else if len(s) >= 1 && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}

	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
				continue
			}
			sb.WriteRune(r)
			continue
		}
		escaped = false
		switch r {
		case 'n':
			sb.WriteRune('\n')
		case 't':
			sb.WriteRune('\t')
		case '\n':
			// line continuation
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

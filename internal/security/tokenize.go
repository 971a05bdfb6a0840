package security

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokNumber
	tokString // single-quoted literal, contents exempt from keyword checks
	tokQuotedIdent
	tokSymbol
)

type token struct {
	kind tokenKind
	text string
}

// stripComments removes -- line comments and /* */ block comments without
// touching quoted literals, so comment-based keyword hiding is neutralized
// before any keyword layer runs. Unterminated block comments are stripped to
// the end of input.
func stripComments(sql string) string {
	var sb strings.Builder
	i := 0
	n := len(sql)
	for i < n {
		c := sql[i]
		switch {
		case c == '\'':
			j := i + 1
			for j < n {
				if sql[j] == '\'' {
					if j+1 < n && sql[j+1] == '\'' { // escaped quote
						j += 2
						continue
					}
					j++
					break
				}
				j++
			}
			sb.WriteString(sql[i:j])
			i = j
		case c == '"':
			j := i + 1
			for j < n && sql[j] != '"' {
				j++
			}
			if j < n {
				j++
			}
			sb.WriteString(sql[i:j])
			i = j
		case c == '-' && i+1 < n && sql[i+1] == '-':
			for i < n && sql[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && sql[i+1] == '*':
			i += 2
			for i+1 < n && !(sql[i] == '*' && sql[i+1] == '/') {
				i++
			}
			if i+1 < n {
				i += 2
			} else {
				i = n
			}
			sb.WriteByte(' ')
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

// normalizeWhitespace collapses runs of whitespace to single spaces and trims.
func normalizeWhitespace(sql string) string {
	fields := strings.Fields(sql)
	return strings.Join(fields, " ")
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') ||
		c >= 0x80 // let multibyte runes ride inside identifiers
}

// tokenize performs a quote-aware scan of comment-stripped SQL. String
// literal contents come back as single tokString tokens so a keyword inside
// a literal never trips the denylist; quoted identifiers likewise.
func tokenize(sql string) []token {
	var toks []token
	i := 0
	n := len(sql)
	for i < n {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'':
			j := i + 1
			for j < n {
				if sql[j] == '\'' {
					if j+1 < n && sql[j+1] == '\'' {
						j += 2
						continue
					}
					break
				}
				j++
			}
			end := j
			if end < n {
				end++ // include closing quote
			}
			toks = append(toks, token{tokString, sql[i:end]})
			i = end
		case c == '"':
			j := i + 1
			for j < n && sql[j] != '"' {
				j++
			}
			if j < n {
				j++
			}
			toks = append(toks, token{tokQuotedIdent, sql[i:j]})
			i = j
		case unicode.IsDigit(rune(c)):
			j := i
			for j < n && (unicode.IsDigit(rune(sql[j])) || sql[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, sql[i:j]})
			i = j
		case isWordByte(c):
			j := i
			for j < n && isWordByte(sql[j]) {
				j++
			}
			toks = append(toks, token{tokWord, sql[i:j]})
			i = j
		case c == ':' && i+1 < n && sql[i+1] == ':':
			toks = append(toks, token{tokSymbol, "::"})
			i += 2
		default:
			toks = append(toks, token{tokSymbol, string(c)})
			i++
		}
	}
	return toks
}

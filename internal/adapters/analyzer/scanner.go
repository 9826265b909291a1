package analyzer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
	"go.trai.ch/zerr"
)

// jsLexer splits JavaScript and TypeScript source into just enough tokens to
// find import declarations. Every non-space character matches some rule, so
// lexing never fails on valid or invalid input; syntax is checked by esbuild.
var jsLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`},
	{Name: "String", Pattern: `"(\\.|[^"\\\n])*"|'(\\.|[^'\\\n])*'`},
	{Name: "Template", Pattern: "`(\\\\.|[^`\\\\])*`"},
	{Name: "Ident", Pattern: `[a-zA-Z_$][\w$]*`},
	{Name: "Punct", Pattern: `[{}(),;.*:=]`},
	{Name: "Other", Pattern: `[^\s]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var (
	identToken    = jsLexer.Symbols()["Ident"]
	stringToken   = jsLexer.Symbols()["String"]
	punctToken    = jsLexer.Symbols()["Punct"]
	templateToken = jsLexer.Symbols()["Template"]
	skipTokens    = map[lexer.TokenType]bool{
		jsLexer.Symbols()["Comment"]:    true,
		jsLexer.Symbols()["Whitespace"]: true,
	}
)

// ScanImports returns the specifiers of the static import declarations in src,
// in source order. Dynamic import() calls, import.meta, re-exports and
// require() calls are not reported.
func ScanImports(filename, src string) ([]string, error) {
	tokens, err := tokenize(filename, src)
	if err != nil {
		return nil, err
	}

	var imports []string
	for i, tok := range tokens {
		if tok.Type != identToken || tok.Value != "import" {
			continue
		}
		if i > 0 && isPunct(tokens[i-1], ".") {
			continue
		}
		spec, ok, err := importSpecifier(tokens[i+1:])
		if err != nil {
			return nil, err
		}
		if ok {
			imports = append(imports, spec)
		}
	}
	return imports, nil
}

// tokenize lexes src without comments or whitespace. A slash in operand
// position starts a regular expression literal, which the lexer cannot tell
// apart from division, so it is skipped here and lexing resumes after it.
func tokenize(filename, src string) ([]lexer.Token, error) {
	var tokens []lexer.Token
	for offset := 0; ; {
		lex, err := jsLexer.LexString(filename, src[offset:])
		if err != nil {
			return nil, err
		}
		all, err := lexer.ConsumeAll(lex)
		if err != nil {
			return nil, err
		}

		resumed := false
		for _, tok := range all {
			if skipTokens[tok.Type] || tok.EOF() {
				continue
			}
			if tok.Value == "/" && startsOperand(tokens) {
				if end, ok := regexpEnd(src, offset+tok.Pos.Offset); ok {
					offset = end
					resumed = true
					break
				}
			}
			tokens = append(tokens, tok)
		}
		if !resumed {
			return tokens, nil
		}
	}
}

// startsOperand reports whether the next token begins an expression operand,
// judged by the last significant token.
func startsOperand(tokens []lexer.Token) bool {
	if len(tokens) == 0 {
		return true
	}
	prev := tokens[len(tokens)-1]
	switch prev.Type {
	case identToken:
		return operandKeywords[prev.Value]
	case stringToken, templateToken:
		return false
	case punctToken:
		return prev.Value != ")"
	}
	r := prev.Value[0]
	return prev.Value != "]" && (r < '0' || r > '9')
}

var operandKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true, "of": true,
	"new": true, "delete": true, "void": true, "throw": true, "case": true,
	"do": true, "else": true, "yield": true, "await": true,
}

// regexpEnd returns the offset just past the regular expression literal that
// starts at src[start], flags included.
func regexpEnd(src string, start int) (int, bool) {
	inClass := false
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '\n':
			return 0, false
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if inClass {
				continue
			}
			i++
			for i < len(src) && isIdentByte(src[i]) {
				i++
			}
			return i, true
		}
	}
	return 0, false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// importSpecifier reads the tokens following an import keyword and returns the
// module specifier when they form a static import declaration.
func importSpecifier(rest []lexer.Token) (string, bool, error) {
	if len(rest) == 0 {
		return "", false, nil
	}

	// import "./side-effect"
	if rest[0].Type == stringToken {
		spec, err := unquote(rest[0])
		return spec, err == nil, err
	}

	// import type { T } from "./types" is erased by the compiler.
	if rest[0].Type == identToken && rest[0].Value == "type" && len(rest) > 1 &&
		(isPunct(rest[1], "{") || isPunct(rest[1], "*") ||
			(rest[1].Type == identToken && rest[1].Value != "from")) {
		return "", false, nil
	}

	for i, tok := range rest {
		switch {
		case tok.Type == identToken:
			if tok.Value == "from" && i > 0 && i+1 < len(rest) && rest[i+1].Type == stringToken {
				spec, err := unquote(rest[i+1])
				return spec, err == nil, err
			}
		case isPunct(tok, "{"), isPunct(tok, "}"), isPunct(tok, ","), isPunct(tok, "*"):
		default:
			return "", false, nil
		}
	}
	return "", false, nil
}

func isPunct(tok lexer.Token, value string) bool {
	return tok.Type == punctToken && tok.Value == value
}

// unquote decodes a string literal token the way a JavaScript engine reads it.
func unquote(tok lexer.Token) (string, error) {
	body := tok.Value[1 : len(tok.Value)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}

	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			sb.WriteByte(body[i])
			continue
		}
		i++
		switch c := body[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\r', '\n':
			// Line continuation.
		case 'x':
			r, n, ok := hexEscape(body[i+1:], 2)
			if !ok {
				return "", invalidEscape(tok)
			}
			sb.WriteRune(r)
			i += n
		case 'u':
			r, n, ok := unicodeEscape(body[i+1:])
			if !ok {
				return "", invalidEscape(tok)
			}
			if utf16.IsSurrogate(r) && strings.HasPrefix(body[i+1+n:], `\u`) {
				if low, m, ok := unicodeEscape(body[i+1+n+2:]); ok {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						n += 2 + m
					}
				}
			}
			sb.WriteRune(r)
			i += n
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}

// unicodeEscape decodes the XXXX or {X...} part of a \u escape.
func unicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		r, _, ok := hexEscape(s[1:end], end-1)
		if !ok || r > unicode.MaxRune {
			return 0, 0, false
		}
		return r, end + 1, true
	}
	return hexEscape(s, 4)
}

func hexEscape(s string, digits int) (rune, int, bool) {
	if len(s) < digits {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:digits], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), digits, true
}

func invalidEscape(tok lexer.Token) error {
	return zerr.With(zerr.New("invalid escape sequence"), "literal", tok.Value)
}

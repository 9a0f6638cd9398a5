package kicadsexp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode"
)

// TokenType is the kind of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenSymbol
	TokenString
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	default:
		return "unknown"
	}
}

// Token is a lexical token with the line it started on.
type Token struct {
	Type  TokenType
	Value string
	Line  int
}

// SyntaxError reports malformed input.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("kicadsexp: line %d: %s", e.Line, e.Msg)
}

// Lexer splits an S-expression stream into tokens.
type Lexer struct {
	reader *bufio.Reader
	peeked rune
	hasPk  bool
	line   int
}

// NewLexer returns a lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{reader: bufio.NewReader(r), line: 1}
}

// NextToken returns the next token, or a TokenEOF token at the end of input.
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipBlank(); err != nil {
		if errors.Is(err, io.EOF) {
			return Token{Type: TokenEOF, Line: l.line}, nil
		}
		return Token{}, err
	}

	ch, _ := l.peek()
	line := l.line
	switch ch {
	case '(':
		l.read()
		return Token{Type: TokenLeftParen, Value: "(", Line: line}, nil
	case ')':
		l.read()
		return Token{Type: TokenRightParen, Value: ")", Line: line}, nil
	case '"':
		s, err := l.readString()
		return Token{Type: TokenString, Value: s, Line: line}, err
	default:
		s, err := l.readSymbol()
		return Token{Type: TokenSymbol, Value: s, Line: line}, err
	}
}

// skipBlank consumes whitespace and '#' comments.
func (l *Lexer) skipBlank() error {
	for {
		ch, err := l.peek()
		if err != nil {
			return err
		}
		switch {
		case unicode.IsSpace(ch):
			l.read()
		case ch == '#':
			for {
				c, err := l.read()
				if err != nil {
					return err
				}
				if c == '\n' {
					break
				}
			}
		default:
			return nil
		}
	}
}

func (l *Lexer) peek() (rune, error) {
	if l.hasPk {
		return l.peeked, nil
	}
	ch, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	l.peeked, l.hasPk = ch, true
	return ch, nil
}

func (l *Lexer) read() (rune, error) {
	ch, err := l.peek()
	if err != nil {
		return 0, err
	}
	l.hasPk = false
	if ch == '\n' {
		l.line++
	}
	return ch, nil
}

func (l *Lexer) readString() (string, error) {
	start := l.line
	l.read()

	var out []rune
	for {
		ch, err := l.read()
		if err != nil {
			return "", &SyntaxError{Line: start, Msg: "unterminated string"}
		}
		switch ch {
		case '"':
			// KiCad 5 files escape quotes by doubling them.
			if next, err := l.peek(); err == nil && next == '"' {
				l.read()
				out = append(out, '"')
				continue
			}
			return string(out), nil
		case '\\':
			next, err := l.read()
			if err != nil {
				return "", &SyntaxError{Line: start, Msg: "unterminated escape"}
			}
			switch next {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				out = append(out, next)
			}
		default:
			out = append(out, ch)
		}
	}
}

func (l *Lexer) readSymbol() (string, error) {
	var out []rune
	for {
		ch, err := l.peek()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}
		l.read()
		out = append(out, ch)
	}
	if len(out) == 0 {
		return "", &SyntaxError{Line: l.line, Msg: "empty symbol"}
	}
	return string(out), nil
}

package kicadsexp

import (
	"fmt"
	"io"
)

// Parser builds S-expression trees from a token stream.
type Parser struct {
	lexer   *Lexer
	current Token
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{lexer: NewLexer(r)}
}

// ParseAll parses every top-level expression until the end of input.
func (p *Parser) ParseAll() ([]Sexp, error) {
	var out []Sexp
	for {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.current.Type == TokenEOF {
			return out, nil
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
}

func (p *Parser) advance() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

func (p *Parser) parseExpr() (Sexp, error) {
	switch p.current.Type {
	case TokenLeftParen:
		return p.parseList()
	case TokenSymbol, TokenString:
		return Symbol(p.current.Value), nil
	default:
		return nil, p.errorf("unexpected %s", p.current.Type)
	}
}

func (p *Parser) parseList() (Sexp, error) {
	start := p.current.Line
	var elements []Sexp
	for {
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch p.current.Type {
		case TokenRightParen:
			return &List{elements: elements}, nil
		case TokenEOF:
			return nil, &SyntaxError{Line: start, Msg: "unclosed list"}
		}
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)
	}
}

func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.current.Line, Msg: fmt.Sprintf(format, args...)}
}

// Package kicadsexp is a streaming S-expression reader for KiCad board
// files. Quoted strings and bare atoms both become Symbols; the parser keeps
// no other state, so arbitrarily large fills can be read from any io.Reader.
package kicadsexp

import (
	"io"
	"strings"
)

// Sexp is an S-expression node: either a Symbol or a *List.
type Sexp interface {
	// IsLeaf returns true for atoms.
	IsLeaf() bool

	// LeafCount returns the number of elements of a list, 1 for atoms.
	LeafCount() int

	// Head returns the first element of a list, or the atom itself.
	Head() Sexp

	// Tail returns the list without its first element, nil when empty.
	Tail() Sexp

	String() string
}

// Symbol is an atom: a keyword, number or string.
type Symbol string

func (s Symbol) IsLeaf() bool   { return true }
func (s Symbol) LeafCount() int { return 1 }
func (s Symbol) Head() Sexp     { return s }
func (s Symbol) Tail() Sexp     { return nil }
func (s Symbol) String() string { return string(s) }

// List is a parenthesized sequence of nodes.
type List struct {
	elements []Sexp
}

// NewList builds a list from elements.
func NewList(elements ...Sexp) *List {
	return &List{elements: elements}
}

func (l *List) IsLeaf() bool   { return false }
func (l *List) LeafCount() int { return len(l.elements) }

func (l *List) Head() Sexp {
	if len(l.elements) == 0 {
		return nil
	}
	return l.elements[0]
}

func (l *List) Tail() Sexp {
	if len(l.elements) <= 1 {
		return nil
	}
	return &List{elements: l.elements[1:]}
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, elem := range l.elements {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Items returns the elements of the list. The slice must not be modified.
func (l *List) Items() []Sexp {
	return l.elements
}

// Get returns the element at index, or nil when out of range.
func (l *List) Get(index int) Sexp {
	if index < 0 || index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.elements)
}

// Parse reads every top-level expression from r.
func Parse(r io.Reader) ([]Sexp, error) {
	return NewParser(r).ParseAll()
}

// ParseString reads every top-level expression from s.
func ParseString(s string) ([]Sexp, error) {
	return Parse(strings.NewReader(s))
}

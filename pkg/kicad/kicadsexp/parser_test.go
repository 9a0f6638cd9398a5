package kicadsexp

import (
	"errors"
	"strings"
	"testing"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"atom list", "(at 1 2.5 90)", "(at 1 2.5 90)"},
		{"nested", "(pad \"1\" smd (at 0 0) (layers F.Cu))", "(pad 1 smd (at 0 0) (layers F.Cu))"},
		{"quoted spaces", `(title "Example Board")`, "(title Example Board)"},
		{"doubled quote", `(name "a""b")`, `(name a"b)`},
		{"escapes", `(text "x\ny\"z")`, "(text x\ny\"z)"},
		{"comment", "# header\n(net 1 GND) # trailing\n", "(net 1 GND)"},
		{"empty list", "()", "()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sexps, err := ParseString(tt.input)
			if err != nil {
				t.Fatalf("ParseString(%q) error: %v", tt.input, err)
			}
			if len(sexps) != 1 {
				t.Fatalf("ParseString(%q) returned %d expressions, want 1", tt.input, len(sexps))
			}
			if got := sexps[0].String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseQuotedStringIsOneSymbol(t *testing.T) {
	sexps, err := ParseString(`(title "Example Board")`)
	if err != nil {
		t.Fatal(err)
	}
	l := sexps[0].(*List)
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if got := l.Get(1); got != Symbol("Example Board") {
		t.Errorf("Get(1) = %v, want %q", got, "Example Board")
	}
	if l.Get(2) != nil {
		t.Error("Get(2) should be nil")
	}
}

func TestParseMultipleTopLevel(t *testing.T) {
	sexps, err := Parse(strings.NewReader("(a) (b c)\n(d)"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sexps) != 3 {
		t.Fatalf("got %d expressions, want 3", len(sexps))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{"unclosed list", "(kicad_pcb\n(version 1)\n", 1},
		{"stray paren", "(a))", 1},
		{"unterminated string", "(a\n\"oops)", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("ParseString(%q) error = %v, want *SyntaxError", tt.input, err)
			}
			if se.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", se.Line, tt.wantLine)
			}
		})
	}
}

func TestListHeadTail(t *testing.T) {
	l := NewList(Symbol("a"), Symbol("b"), Symbol("c"))
	if l.Head() != Symbol("a") {
		t.Errorf("Head() = %v", l.Head())
	}
	tail := l.Tail()
	if tail.LeafCount() != 2 || tail.Head() != Symbol("b") {
		t.Errorf("Tail() = %v", tail)
	}
	if NewList(Symbol("a")).Tail() != nil {
		t.Error("Tail() of single element list should be nil")
	}
	if NewList().Head() != nil {
		t.Error("Head() of empty list should be nil")
	}
}

package cddl

import "testing"

func TestLexerPunctuation(t *testing.T) {
	input := `= // => : ? * + < > ( ) { } [ ] , . .. ... # ~`

	expected := []TokenType{
		TokenEquals, TokenDblSlash, TokenArrow, TokenColon, TokenQuestion,
		TokenStar, TokenPlus, TokenLAngle, TokenRAngle, TokenLParen,
		TokenRParen, TokenLBrace, TokenRBrace, TokenLBracket, TokenRBracket,
		TokenComma, TokenDot, TokenDotDot, TokenDotDotDot, TokenHash, TokenTilde,
		TokenEOF,
	}

	lexer := NewLexer("test.cddl", input)
	for i, exp := range expected {
		tok := lexer.Next()
		if tok.Type != exp {
			t.Errorf("token %d: expected %v, got %v", i, exp, tok.Type)
		}
	}
}

func TestLexerIdentifiers(t *testing.T) {
	input := "foo bar-baz _private $extension @meta"
	expected := []string{"foo", "bar-baz", "_private", "$extension", "@meta"}

	lexer := NewLexer("test.cddl", input)
	for i, exp := range expected {
		tok := lexer.Next()
		if tok.Type != TokenIdent {
			t.Errorf("token %d: expected Ident, got %v", i, tok.Type)
		}
		if tok.Value != exp {
			t.Errorf("token %d: expected %q, got %q", i, exp, tok.Value)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
		value string
	}{
		{"0", TokenUint, "0"},
		{"123", TokenUint, "123"},
		{"-1", TokenInt, "-1"},
		{"-123", TokenInt, "-123"},
	}

	for _, tt := range tests {
		lexer := NewLexer("test.cddl", tt.input)
		tok := lexer.Next()
		if tok.Type != tt.typ {
			t.Errorf("%q: expected type %v, got %v", tt.input, tt.typ, tok.Type)
		}
		if tok.Value != tt.value {
			t.Errorf("%q: expected value %q, got %q", tt.input, tt.value, tok.Value)
		}
	}
}

func TestLexerString(t *testing.T) {
	input := `"hello\nworld"`
	lexer := NewLexer("test.cddl", input)
	tok := lexer.Next()
	if tok.Type != TokenText {
		t.Fatalf("expected Text, got %v", tok.Type)
	}
	if tok.Value != "hello\nworld" {
		t.Errorf("expected %q, got %q", "hello\nworld", tok.Value)
	}
}

func TestLexerComment(t *testing.T) {
	input := "; @name: Foo\nfoo = int"
	lexer := NewLexer("test.cddl", input)
	tok := lexer.Next()
	if tok.Type != TokenComment {
		t.Fatalf("expected Comment, got %v", tok.Type)
	}
	if tok.Value != "@name: Foo" {
		t.Errorf("expected %q, got %q", "@name: Foo", tok.Value)
	}
}

func TestLexerPosition(t *testing.T) {
	input := "foo\nbar"
	lexer := NewLexer("test.cddl", input)

	first := lexer.Next()
	if first.Position.Line != 1 || first.Position.Column != 1 {
		t.Errorf("expected line 1 col 1, got line %d col %d", first.Position.Line, first.Position.Column)
	}

	second := lexer.Next()
	if second.Position.Line != 2 || second.Position.Column != 1 {
		t.Errorf("expected line 2 col 1, got line %d col %d", second.Position.Line, second.Position.Column)
	}
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	lexer := NewLexer("test.cddl", "%")
	tok := lexer.Next()
	if tok.Type != TokenError {
		t.Fatalf("expected Error token, got %v", tok.Type)
	}
}

package meta

import (
	"testing"

	"github.com/blockberries/cddlc/pkg/cddl"
)

func comment(text string) *cddl.Comment {
	return &cddl.Comment{Text: text}
}

func TestParseName(t *testing.T) {
	md := Parse([]*cddl.Comment{comment("@name: Foo")})
	if md.Name == nil || *md.Name != "Foo" {
		t.Fatalf("expected name %q, got %v", "Foo", md.Name)
	}
}

func TestParseNewtype(t *testing.T) {
	md := Parse([]*cddl.Comment{comment("@newtype")})
	if !md.IsNewtype {
		t.Fatal("expected IsNewtype to be true")
	}
}

func TestParseLastNameWins(t *testing.T) {
	md := Parse([]*cddl.Comment{comment("@name: First"), comment("@name: Second")})
	if md.Name == nil || *md.Name != "Second" {
		t.Fatalf("expected last @name to win, got %v", md.Name)
	}
}

func TestParseIgnoresUnrecognizedComments(t *testing.T) {
	md := Parse([]*cddl.Comment{comment("just a description")})
	if md.Name != nil || md.IsNewtype {
		t.Fatalf("expected no metadata, got %+v", md)
	}
}

func TestParseEmpty(t *testing.T) {
	md := Parse(nil)
	if md.Name != nil || md.IsNewtype {
		t.Fatalf("expected zero-value metadata, got %+v", md)
	}
}

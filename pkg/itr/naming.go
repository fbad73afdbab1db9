package itr

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser is used for converting CDDL identifier parts to title case.
var titleCaser = cases.Title(language.English)

// ToPascalCase converts a CDDL identifier (snake_case or kebab-case) to
// PascalCase, suitable for a struct/enum/type name.
func ToPascalCase(s string) string {
	parts := splitIdent(s)
	for i, p := range parts {
		parts[i] = titleCaser.String(strings.ToLower(p))
	}
	return strings.Join(parts, "")
}

// ToSnakeCase converts a CDDL identifier to snake_case, suitable for a
// struct field name.
func ToSnakeCase(s string) string {
	parts := splitIdent(s)
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "_")
}

// splitIdent splits a CDDL identifier into parts on '_', '-', '.', and
// before an uppercase ASCII letter that follows a non-uppercase rune.
func splitIdent(s string) []string {
	if s == "" {
		return nil
	}

	var parts []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.':
			flush()
		case i > 0 && isUpper(r) && !isUpper(runes[i-1]):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return parts
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

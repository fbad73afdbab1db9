// Package meta parses the small comment-annotation language CDDL rules
// carry to steer IR construction: "@name: <ident>" to override a
// synthesized name and "@newtype" to force wrapper-type treatment
// instead of alias collapsing.
package meta

import (
	"strings"

	"github.com/blockberries/cddlc/pkg/cddl"
)

// RuleMetadata holds the parsed annotations attached to a rule's comments.
type RuleMetadata struct {
	Name      *string
	IsNewtype bool
}

const (
	nameTag    = "@name:"
	newtypeTag = "@newtype"
)

// Parse scans a rule's comments for recognized annotations. Unrecognized
// comments are ignored; the last "@name:" wins if more than one appears.
func Parse(comments []*cddl.Comment) RuleMetadata {
	var md RuleMetadata
	for _, c := range comments {
		text := strings.TrimSpace(c.Text)
		switch {
		case strings.HasPrefix(text, nameTag):
			name := strings.TrimSpace(strings.TrimPrefix(text, nameTag))
			if name != "" {
				md.Name = &name
			}
		case text == newtypeTag:
			md.IsNewtype = true
		}
	}
	return md
}

package analyze

import (
	"github.com/blockberries/cddlc/pkg/cddl"
	"github.com/blockberries/cddlc/pkg/itr"
)

// analyzer carries the mutable state this pass touches besides the
// catalog itself: the list of plain-group rules seen so far, finalized
// once every rule has had a chance to reference them (and so set their
// representation) via the catalog's SetRepIfPlainGroup hook, and the
// name of the rule currently being dispatched.
type analyzer struct {
	cat     *itr.Catalog
	pending []pendingGroup

	// currentRule names the top-level rule being dispatched, for
	// diagnostics that point at it (eager .cbor resolution).
	currentRule string
}

// pendingGroup is a top-level group rule whose own Record/Table
// registration is deferred until every other
// rule has run, since its representation may only become known from a
// later rule that references it inside a map or array.
type pendingGroup struct {
	name   string
	choice *cddl.GroupChoice
	pos    cddl.Position
}

// Run walks every rule in file in source order, registering its
// meaning into cat, then finalizes any plain group rules whose
// representation was discovered along the way. It returns the first
// error encountered; this pass has no partial-recovery path.
func Run(file *cddl.File, cat *itr.Catalog) *Error {
	a := &analyzer{cat: cat}
	for _, rule := range file.Rules {
		if err := a.dispatchRule(rule); err != nil {
			return err
		}
	}
	for _, pg := range a.pending {
		if err := a.finalizePlainGroup(pg); err != nil {
			return err
		}
	}
	return nil
}

// finalizePlainGroup registers a plain group rule's own Record/Table
// shape using whatever representation a referencing map or array
// discovered via SetRepIfPlainGroup, defaulting to Map when the group
// was declared but never referenced (a group nobody splices still needs
// a shape for the downstream generator to emit).
func (a *analyzer) finalizePlainGroup(pg pendingGroup) *Error {
	a.currentRule = pg.name
	rep, ok := a.cat.PlainGroupRepresentation(pg.name)
	if !ok {
		rep = itr.RepMap
	}
	group := &cddl.Group{Position: pg.choice.Position, EndPos: pg.choice.EndPos, Choices: []*cddl.GroupChoice{pg.choice}}
	return a.registerGroup(group, pg.name, rep, nil, nil, pg.pos)
}

// registerAlias registers name as a plain alias for ty.
func (a *analyzer) registerAlias(pos cddl.Position, name string, ty itr.RustType) *Error {
	if err := a.cat.RegisterTypeAlias(name, ty, true, true); err != nil {
		return errAt(InvalidSchema, pos, "%v", err)
	}
	return nil
}

// registerAliasTagged is registerAlias, wrapping ty in a Tagged node
// first when tag is non-nil.
func (a *analyzer) registerAliasTagged(pos cddl.Position, name string, ty itr.RustType, tag *uint64) *Error {
	if tag != nil {
		ty = itr.Tagged(*tag, ty)
	}
	return a.registerAlias(pos, name, ty)
}

// registerStruct registers a fully-built RustStruct.
func (a *analyzer) registerStruct(pos cddl.Position, s itr.RustStruct) *Error {
	if err := a.cat.RegisterRustStruct(s); err != nil {
		return errAt(InvalidSchema, pos, "%v", err)
	}
	return nil
}

// registerGenericDef registers a generic schema, or rejects it when the
// name collides with anything already registered.
func (a *analyzer) registerGenericDef(pos cddl.Position, name string, def itr.GenericDef) *Error {
	if err := a.cat.RegisterGenericDef(name, def); err != nil {
		return errAt(InvalidSchema, pos, "%v", err)
	}
	return nil
}

// registerGenericInstance registers a monomorphization request.
func (a *analyzer) registerGenericInstance(pos cddl.Position, newName, base string, args []itr.RustType) *Error {
	if err := a.cat.RegisterGenericInstance(itr.GenericInstance{NewName: newName, BaseName: base, Args: args}); err != nil {
		return errAt(InvalidSchema, pos, "%v", err)
	}
	return nil
}

// boundsFromRange converts an open/closed (low, high) pair into the
// ITR's Bounds shape, used for Wrapper structs.
func boundsFromRange(low, high *int64) *itr.Bounds {
	b := &itr.Bounds{}
	if low != nil {
		b.HasLow = true
		b.Low = *low
	}
	if high != nil {
		b.HasHigh = true
		b.High = *high
	}
	return b
}

// toIdents converts raw CDDL generic parameter names to raw Idents.
func toIdents(names []string) []itr.Ident {
	idents := make([]itr.Ident, len(names))
	for i, n := range names {
		idents[i] = itr.NewRawIdent(n)
	}
	return idents
}

package itr

// builtinPrimitives maps CDDL's built-in type names to IR primitives.
// Anything not in this table is assumed to be a user-defined rule name
// and lowers to a Rust(ident) reference instead.
// "bool" is deliberately absent: the Primitive enum has no boolean
// member, so a bare "bool" reference lowers to a Rust(ident)
// placeholder like any other named type rather than a built-in.
var builtinPrimitives = map[string]Primitive{
	"uint":  U64,
	"int":   I64,
	"tstr":  Str,
	"text":  Str,
	"bstr":  Bytes,
	"bytes": Bytes,
}

type aliasEntry struct {
	Ty                RustType
	GenerateRust      bool
	GenerateSerialize bool
}

// Catalog is the mutable registry every analyzer component writes into.
// It is not safe for concurrent use — the pass that builds it is
// single-threaded by design.
type Catalog struct {
	aliases          map[string]aliasEntry
	structs          map[string]*RustStruct
	genericDefs      map[string]*GenericDef
	genericInstances map[string]*GenericInstance

	plainGroups   map[string]bool
	plainGroupRep map[string]Representation

	// order records registration order across all kinds, for diagnostics
	// and deterministic catalog dumps.
	order []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		aliases:          make(map[string]aliasEntry),
		structs:          make(map[string]*RustStruct),
		genericDefs:      make(map[string]*GenericDef),
		genericInstances: make(map[string]*GenericInstance),
		plainGroups:      make(map[string]bool),
		plainGroupRep:    make(map[string]Representation),
	}
}

func (c *Catalog) taken(name string) bool {
	if _, ok := c.aliases[name]; ok {
		return true
	}
	if _, ok := c.structs[name]; ok {
		return true
	}
	if _, ok := c.genericDefs[name]; ok {
		return true
	}
	if _, ok := c.genericInstances[name]; ok {
		return true
	}
	return false
}

// RegisterTypeAlias registers name as a plain alias for ty. generateRust
// and generateSerialize are carried through for the downstream generator
// (this pass always sets them true unless the caller knows better).
func (c *Catalog) RegisterTypeAlias(name string, ty RustType, generateRust, generateSerialize bool) error {
	if c.taken(name) {
		return newCatalogError(name, "already registered", ErrDuplicateRegistration)
	}
	c.aliases[name] = aliasEntry{Ty: ty, GenerateRust: generateRust, GenerateSerialize: generateSerialize}
	c.order = append(c.order, name)
	return nil
}

// RegisterRustStruct registers a fully-formed struct (record, table,
// wrapper, type-choice, or group-choice) under its own name.
func (c *Catalog) RegisterRustStruct(s RustStruct) error {
	if c.taken(s.Name) {
		return newCatalogError(s.Name, "already registered", ErrDuplicateRegistration)
	}
	stored := s
	c.structs[s.Name] = &stored
	c.order = append(c.order, s.Name)
	return nil
}

// RegisterGenericDef registers the schema for a generic under name.
func (c *Catalog) RegisterGenericDef(name string, def GenericDef) error {
	if c.taken(name) {
		return newCatalogError(name, "already registered", ErrDuplicateRegistration)
	}
	stored := def
	c.genericDefs[name] = &stored
	c.order = append(c.order, name)
	return nil
}

// RegisterGenericInstance registers a monomorphization request under its
// synthesized name.
func (c *Catalog) RegisterGenericInstance(inst GenericInstance) error {
	if c.taken(inst.NewName) {
		return newCatalogError(inst.NewName, "already registered", ErrDuplicateRegistration)
	}
	stored := inst
	c.genericInstances[inst.NewName] = &stored
	c.order = append(c.order, inst.NewName)
	return nil
}

// NewType resolves a bare CDDL type name to an IR reference: a built-in
// Primitive if name is one of CDDL's predefined type names, otherwise a
// Rust(ident) placeholder naming a type this same pass registers (or
// will register before the pass completes).
func (c *Catalog) NewType(name string) RustType {
	if p, ok := builtinPrimitives[name]; ok {
		return PrimitiveType(p)
	}
	return Rust(NewRawIdent(name))
}

// ApplyTypeAliases chases a chain of registered aliases starting at
// name, returning the final non-alias RustType. A built-in type name
// resolves to its Primitive, and a name registered as a struct, generic
// definition or generic instance resolves to Rust(name). ok is false
// only if name is neither a built-in nor registered under any kind.
func (c *Catalog) ApplyTypeAliases(name string) (ty RustType, ok bool) {
	seen := make(map[string]bool)
	current := name
	for {
		if p, ok := builtinPrimitives[current]; ok {
			return PrimitiveType(p), true
		}
		entry, exists := c.aliases[current]
		if !exists {
			if current == name && !c.taken(current) {
				return RustType{}, false
			}
			// A registered struct (or a chain that bottomed out at a
			// Rust(ident) reference): that reference is the resolved form.
			return Rust(NewRawIdent(current)), true
		}
		if seen[current] {
			// A cycle would only arise from a bug elsewhere in the pass,
			// since every alias is registered with a fresh name; stop
			// rather than loop forever.
			return entry.Ty, true
		}
		seen[current] = true
		if entry.Ty.Kind != TRust {
			return entry.Ty, true
		}
		current = entry.Ty.Rust.Raw
	}
}

// Struct looks up a previously registered struct by name.
func (c *Catalog) Struct(name string) (*RustStruct, bool) {
	s, ok := c.structs[name]
	return s, ok
}

// MarkPlainGroup records that name denotes a group rule usable only by
// reference (splice) inside another group, not a standalone map/array.
func (c *Catalog) MarkPlainGroup(name string) {
	c.plainGroups[name] = true
}

// IsPlainGroup reports whether name was previously marked via MarkPlainGroup.
func (c *Catalog) IsPlainGroup(name string) bool {
	return c.plainGroups[name]
}

// SetRepIfPlainGroup records the representation (map or array) a plain
// group is spliced into, the first time it is referenced from a typed
// context; later references reuse the same representation.
func (c *Catalog) SetRepIfPlainGroup(name string, rep Representation) {
	if !c.plainGroups[name] {
		return
	}
	if _, already := c.plainGroupRep[name]; !already {
		c.plainGroupRep[name] = rep
	}
}

// PlainGroupRepresentation returns the representation previously
// recorded via SetRepIfPlainGroup, if any.
func (c *Catalog) PlainGroupRepresentation(name string) (Representation, bool) {
	rep, ok := c.plainGroupRep[name]
	return rep, ok
}

// Names returns every registered name in registration order, for
// deterministic catalog dumps (used by cmd/cddlc translate).
func (c *Catalog) Names() []string {
	result := make([]string, len(c.order))
	copy(result, c.order)
	return result
}

// Alias returns the registered alias entry for name, if name was
// registered via RegisterTypeAlias.
func (c *Catalog) Alias(name string) (ty RustType, ok bool) {
	entry, ok := c.aliases[name]
	if !ok {
		return RustType{}, false
	}
	return entry.Ty, true
}

// GenericDefByName returns the registered generic definition for name, if any.
func (c *Catalog) GenericDefByName(name string) (*GenericDef, bool) {
	d, ok := c.genericDefs[name]
	return d, ok
}

// GenericInstanceByName returns the registered monomorphization request
// for name, if any.
func (c *Catalog) GenericInstanceByName(name string) (*GenericInstance, bool) {
	i, ok := c.genericInstances[name]
	return i, ok
}

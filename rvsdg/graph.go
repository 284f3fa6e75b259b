package rvsdg

// Linkage describes the external visibility of a λ/δ definition.
type Linkage uint8

const (
	LinkageExternal Linkage = iota
	LinkageInternal
	LinkagePrivate
	LinkageWeak
	LinkageLinkOnce
	LinkageCommon
	LinkageAppending
	LinkageAvailableExternally
	LinkageExternalWeak
	LinkageExternalODR
	LinkageWeakODR
	LinkageLinkOnceODR
)

// Import is a root-region argument pre-bound to an external symbol.
type Import struct {
	Name    string
	Linkage Linkage
	Output  *OutputPort
}

// Export names a root-region result to preserve across dead-node
// elimination.
type Export struct {
	Name  string
	Input *InputPort
}

// Graph is the top-level container: it owns the root region, the type
// interner, and the normal-form registry, and exposes the import/export
// surface at the root region boundary (spec §6).
type Graph struct {
	root        *Region
	types       *typeInterner
	normalForms *NormalFormRegistry
	imports     []*Import
	exports     []*Export
}

// NewGraph creates an empty graph with a fresh root region.
func NewGraph() *Graph {
	g := &Graph{
		types:       newTypeInterner(),
		normalForms: NewNormalFormRegistry(),
	}
	g.root = newRegion(g, nil)
	// FlattenedBinaryOp is a kernel type, not a domain operator, so its
	// normal form is wired in here rather than left for callers to
	// register (contrast ops.RegisterDefaultNormalForms, which registers
	// normal forms for concrete domain operator classes).
	g.normalForms.Register(&FlattenedBinaryOp{}, NewFlattenedBinaryNormalForm())
	return g
}

// Root returns the graph's root region.
func (g *Graph) Root() *Region { return g.root }

// NormalForms returns the graph's normal-form registry, used to register
// or reconfigure rewrite behavior for an operator class before building
// nodes of that class.
func (g *Graph) NormalForms() *NormalFormRegistry { return g.normalForms }

// InternType returns the canonical instance for t within this graph.
func (g *Graph) InternType(t Type) Type { return g.types.Intern(t) }

// Import adds a root-region argument tagged as an external import. No
// other root-region edges are allowed in (spec §6): an import only ever
// originates at the root region boundary.
func (g *Graph) Import(name string, linkage Linkage, typ Type) *Import {
	out := g.root.AddArgument(typ)
	imp := &Import{Name: name, Linkage: linkage, Output: out}
	g.imports = append(g.imports, imp)
	return imp
}

// Exports returns the graph's current root-region exports.
func (g *Graph) Exports() []*Export { return g.exports }

// Imports returns the graph's current root-region imports.
func (g *Graph) Imports() []*Import { return g.imports }

// Export adds a root-region result naming origin, preserving it across
// dead-node elimination (spec I7, §6).
func (g *Graph) Export(name string, origin *OutputPort) (*Export, error) {
	in, err := g.root.AddResult(origin.Type(), origin)
	if err != nil {
		return nil, err
	}
	exp := &Export{Name: name, Input: in}
	g.exports = append(g.exports, exp)
	return exp, nil
}

package ops

import "github.com/halvorlinder/jlm/rvsdg"

// RegisterDefaultNormalForms installs this package's normal forms onto g:
// binary reductions for integer arithmetic, and the domain-specific
// memory reductions for Load and Store. Alloca and the constant operators
// are left on the registry's generic fallback (CSE + dead-node only):
// they have no operator-specific reduction of their own.
func RegisterDefaultNormalForms(g *rvsdg.Graph) {
	forms := g.NormalForms()
	forms.Register(&IntBinaryOp{}, rvsdg.NewBinaryNormalForm())
	forms.Register(&Load{}, NewLoadNormalForm())
	forms.Register(&Store{}, NewStoreNormalForm())
}

package passes

import "github.com/halvorlinder/jlm/rvsdg"

// FoldConstantGammas inlines every γ node whose predicate traces back to a
// compile-time constant (spec §4.2's predicate-constant fold). detect
// inspects a candidate predicate's producing port and reports the chosen
// subregion index, or ok=false if the producer isn't a constant this
// caller recognizes. Taking detect as a parameter, rather than importing a
// concrete constant operator, keeps this pass independent of any one
// operator catalogue — ops.AsControlConstant is the detector a caller
// wiring in the arithmetic/memory operators would pass.
func FoldConstantGammas(detect func(*rvsdg.OutputPort) (choice uint32, ok bool)) Pass {
	return Pass{
		Name: "fold-constant-gammas",
		Run: func(g *rvsdg.Graph) (bool, error) {
			changed := false
			err := walkRegions(g.Root(), func(r *rvsdg.Region) error {
				did, err := foldConstantGammasInRegion(r, detect)
				if err != nil {
					return err
				}
				changed = changed || did
				return nil
			})
			return changed, err
		},
	}
}

func foldConstantGammasInRegion(r *rvsdg.Region, detect func(*rvsdg.OutputPort) (uint32, bool)) (bool, error) {
	changed := false
	for _, n := range append([]*rvsdg.Node(nil), r.Nodes()...) {
		_, ok := n.Kind().(*rvsdg.GammaKind)
		if !ok {
			continue
		}
		predicate := rvsdg.GammaPredicate(n)
		choice, ok := detect(predicate.Producer())
		if !ok {
			continue
		}
		if err := rvsdg.GammaFoldConstantPredicate(r, n, int(choice)); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

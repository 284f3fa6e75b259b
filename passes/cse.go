package passes

import (
	"reflect"

	"github.com/halvorlinder/jlm/rvsdg"
)

// CSE re-scans every region for simple nodes applying the same operator to
// the same operand ports and merges duplicates (spec §4.5.1). Construction
// time CSE (rvsdg.Region.findCSE, consulted by every normal form) already
// catches this for nodes built through Region.AddNode; this pass catches
// duplicates a rewrite introduced by some other route, such as a γ
// constant-predicate fold's copy of a subregion that happened to mirror
// something already present in the destination region.
func CSE() Pass {
	return Pass{
		Name: "cse",
		Run: func(g *rvsdg.Graph) (bool, error) {
			changed := false
			err := walkRegions(g.Root(), func(r *rvsdg.Region) error {
				did, err := cseRegion(r)
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

func cseRegion(r *rvsdg.Region) (bool, error) {
	changed := false
	seen := make(map[reflect.Type][]*rvsdg.Node)
	for _, n := range append([]*rvsdg.Node(nil), r.Nodes()...) {
		op, ok := n.Operator()
		if !ok {
			continue
		}
		cls := operatorClass(op)
		dup := false
		for _, cand := range seen[cls] {
			if sameApplication(cand, n) {
				for _, out := range n.Outputs() {
					if out.NumConsumers() > 0 {
						changed = true
					}
				}
				if err := divertAllOutputs(r, n, cand); err != nil {
					return changed, err
				}
				dup = true
				break
			}
		}
		if !dup {
			seen[cls] = append(seen[cls], n)
		}
	}
	return changed, nil
}

// sameApplication reports whether a and b apply equal operators to the
// same operand ports in the same order.
func sameApplication(a, b *rvsdg.Node) bool {
	aOp, _ := a.Operator()
	bOp, _ := b.Operator()
	if !aOp.Equals(bOp) || len(a.Inputs()) != len(b.Inputs()) {
		return false
	}
	for i := range a.Inputs() {
		if a.Input(i).Producer() != b.Input(i).Producer() {
			return false
		}
	}
	return true
}

// divertAllOutputs rebinds every consumer of dead's outputs onto keep's
// corresponding outputs, leaving dead for a later dead-node-elimination
// sweep to remove.
func divertAllOutputs(r *rvsdg.Region, dead, keep *rvsdg.Node) error {
	for i, out := range dead.Outputs() {
		for _, consumer := range out.Consumers() {
			if err := r.Divert(consumer, keep.Output(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

package serialize

import (
	"fmt"
	"strings"

	"github.com/halvorlinder/jlm/rvsdg"
)

type refNames map[*rvsdg.OutputPort]string

type dumper struct {
	out      *strings.Builder
	registry *Registry
}

// Dump renders g as text. registry supplies the Codec for every operator
// class reachable from g; Dump errors if it encounters one with no
// matching codec.
func Dump(g *rvsdg.Graph, registry *Registry) (string, error) {
	d := &dumper{out: &strings.Builder{}, registry: registry}
	d.writeLine("GRAPH")
	if err := d.dumpRootBody(g); err != nil {
		return "", err
	}
	return d.out.String(), nil
}

func (d *dumper) writeLine(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
	d.out.WriteByte('\n')
}

func (d *dumper) dumpRootBody(g *rvsdg.Graph) error {
	root := g.Root()
	importByOutput := make(map[*rvsdg.OutputPort]*rvsdg.Import, len(g.Imports()))
	for _, imp := range g.Imports() {
		importByOutput[imp.Output] = imp
	}
	exportByInput := make(map[*rvsdg.InputPort]*rvsdg.Export, len(g.Exports()))
	for _, exp := range g.Exports() {
		exportByInput[exp.Input] = exp
	}

	refs := make(refNames)
	for i, arg := range root.Arguments() {
		refs[arg] = fmt.Sprintf("a%d", i)
		if imp, ok := importByOutput[arg]; ok {
			d.writeLine("ARG %s IMPORT %s %d", encodeType(arg.Type()), imp.Name, imp.Linkage)
		} else {
			d.writeLine("ARG %s", encodeType(arg.Type()))
		}
	}

	if err := d.dumpNodes(root, refs); err != nil {
		return err
	}

	for _, in := range root.Results() {
		ref := refs[in.Producer()]
		if exp, ok := exportByInput[in]; ok {
			d.writeLine("RESULT %s EXPORT %s", ref, exp.Name)
		} else {
			d.writeLine("RESULT %s", ref)
		}
	}
	d.writeLine("END")
	return nil
}

// dumpSubBody dumps a structural node's subregion body: its nodes, then
// (unless skipResults, which γ subregions set since their results are
// declared via EXIT lines at the owning node instead) its results.
func (d *dumper) dumpSubBody(sub *rvsdg.Region, skipResults bool) (refNames, error) {
	refs := make(refNames)
	for i, arg := range sub.Arguments() {
		refs[arg] = fmt.Sprintf("a%d", i)
	}
	if err := d.dumpNodes(sub, refs); err != nil {
		return nil, err
	}
	if !skipResults {
		for _, in := range sub.Results() {
			d.writeLine("RESULT %s", refs[in.Producer()])
		}
	}
	d.writeLine("END")
	return refs, nil
}

func (d *dumper) dumpNodes(r *rvsdg.Region, refs refNames) error {
	for ni, n := range r.Nodes() {
		for oi, out := range n.Outputs() {
			refs[out] = fmt.Sprintf("n%d.%d", ni, oi)
		}
		if err := d.dumpNode(n, refs); err != nil {
			return err
		}
	}
	return nil
}

// headerTypeList renders ts as a single line token, using "-" for the
// empty list so a header line's field count stays fixed regardless of
// how many types it carries (strings.Fields would otherwise swallow an
// empty token and shift every field after it).
func headerTypeList(ts []rvsdg.Type) string {
	if len(ts) == 0 {
		return "-"
	}
	return encodeTypeList(ts)
}

func operandRefs(n *rvsdg.Node, refs refNames) string {
	parts := make([]string, len(n.Inputs()))
	for i, in := range n.Inputs() {
		parts[i] = refs[in.Producer()]
	}
	return strings.Join(parts, ",")
}

func (d *dumper) dumpNode(n *rvsdg.Node, refs refNames) error {
	switch kind := n.Kind().(type) {
	case *rvsdg.SimpleKind:
		tag, payload, err := d.registry.encode(kind.Op)
		if err != nil {
			return err
		}
		d.writeLine("NODE OP %s %s", tag, payload)
		d.writeLine("OPERANDS %s", operandRefs(n, refs))
	case *rvsdg.GammaKind:
		d.writeLine("NODE GAMMA %d", len(kind.Subregions))
		d.writeLine("OPERANDS %s", operandRefs(n, refs))
		subRefs := make([]refNames, len(kind.Subregions))
		for i, sub := range kind.Subregions {
			d.writeLine("SUB")
			sr, err := d.dumpSubBody(sub, true)
			if err != nil {
				return err
			}
			subRefs[i] = sr
		}
		for j := 0; j < len(n.Outputs()); j++ {
			parts := make([]string, len(kind.Subregions))
			for i, sub := range kind.Subregions {
				parts[i] = subRefs[i][sub.Results()[j].Producer()]
			}
			d.writeLine("EXIT %s", strings.Join(parts, ","))
		}
	case *rvsdg.ThetaKind:
		d.writeLine("NODE THETA")
		d.writeLine("OPERANDS %s", operandRefs(n, refs))
		d.writeLine("SUB")
		if _, err := d.dumpSubBody(kind.Subregion, false); err != nil {
			return err
		}
	case *rvsdg.LambdaKind:
		d.writeLine("NODE LAMBDA %s %d %d %s %s", kind.Name, kind.Linkage, kind.NumCtxVars,
			headerTypeList(kind.ParamTypes), headerTypeList(kind.RetTypes))
		d.writeLine("OPERANDS %s", operandRefs(n, refs))
		d.writeLine("SUB")
		if _, err := d.dumpSubBody(kind.Subregion, false); err != nil {
			return err
		}
	case *rvsdg.DeltaKind:
		d.writeLine("NODE DELTA %s %d %t %s", kind.Name, kind.Linkage, kind.Constant, encodeType(kind.ValueType))
		d.writeLine("OPERANDS %s", operandRefs(n, refs))
		d.writeLine("SUB")
		if _, err := d.dumpSubBody(kind.Subregion, false); err != nil {
			return err
		}
	case *rvsdg.PhiKind:
		d.writeLine("NODE PHI %d %s", kind.NumCtxVars, headerTypeList(kind.RecursiveTypes))
		d.writeLine("OPERANDS %s", operandRefs(n, refs))
		d.writeLine("SUB")
		if _, err := d.dumpSubBody(kind.Subregion, false); err != nil {
			return err
		}
	default:
		return fmt.Errorf("serialize: unknown node kind %T", kind)
	}
	return nil
}

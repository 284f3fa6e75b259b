package serialize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/halvorlinder/jlm/rvsdg"
)

type refPorts map[string]*rvsdg.OutputPort

type lineScanner struct {
	lines []string
	pos   int
}

func newLineScanner(text string) *lineScanner {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return &lineScanner{lines: lines}
}

func (s *lineScanner) next() (string, error) {
	if s.pos >= len(s.lines) {
		return "", fmt.Errorf("serialize: unexpected end of input")
	}
	l := s.lines[s.pos]
	s.pos++
	return l, nil
}

func (s *lineScanner) peek() (string, bool) {
	if s.pos >= len(s.lines) {
		return "", false
	}
	return s.lines[s.pos], true
}

type parser struct {
	sc       *lineScanner
	g        *rvsdg.Graph
	registry *Registry
}

// Parse reconstructs a *rvsdg.Graph from text produced by Dump. Every
// simple node is rebuilt with Region.CreateSimpleNode (bypassing normal-form
// reduction), so the parsed graph has exactly the shape that was dumped.
func Parse(text string, registry *Registry) (*rvsdg.Graph, error) {
	p := &parser{sc: newLineScanner(text), registry: registry}
	head, err := p.sc.next()
	if err != nil {
		return nil, err
	}
	if head != "GRAPH" {
		return nil, fmt.Errorf("serialize: expected GRAPH, got %q", head)
	}
	p.g = rvsdg.NewGraph()
	if _, err := p.parseRootBody(); err != nil {
		return nil, err
	}
	return p.g, nil
}

func resolveRefs(refs refPorts, csv string) ([]*rvsdg.OutputPort, error) {
	if csv == "" {
		return nil, nil
	}
	names := strings.Split(csv, ",")
	out := make([]*rvsdg.OutputPort, len(names))
	for i, name := range names {
		port, ok := refs[name]
		if !ok {
			return nil, fmt.Errorf("serialize: unresolved reference %q", name)
		}
		out[i] = port
	}
	return out, nil
}

func operandsLine(line string) (string, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 || tokens[0] != "OPERANDS" {
		return "", fmt.Errorf("serialize: expected OPERANDS line, got %q", line)
	}
	if len(tokens) == 1 {
		return "", nil
	}
	return tokens[1], nil
}

func (p *parser) readOperands(refs refPorts) ([]*rvsdg.OutputPort, error) {
	line, err := p.sc.next()
	if err != nil {
		return nil, err
	}
	csv, err := operandsLine(line)
	if err != nil {
		return nil, err
	}
	return resolveRefs(refs, csv)
}

func (p *parser) expect(keyword string) (string, error) {
	line, err := p.sc.next()
	if err != nil {
		return "", err
	}
	tokens := strings.Fields(line)
	if len(tokens) == 0 || tokens[0] != keyword {
		return "", fmt.Errorf("serialize: expected %s line, got %q", keyword, line)
	}
	return line, nil
}

func (p *parser) parseRootBody() (refPorts, error) {
	root := p.g.Root()
	refs := make(refPorts)

	for {
		line, ok := p.sc.peek()
		if !ok {
			return nil, fmt.Errorf("serialize: unterminated root region")
		}
		tokens := strings.Fields(line)
		if tokens[0] != "ARG" {
			break
		}
		p.sc.pos++
		typ, err := decodeType(tokens[1])
		if err != nil {
			return nil, err
		}
		if len(tokens) >= 4 && tokens[2] == "IMPORT" {
			linkage, err := strconv.Atoi(tokens[4])
			if err != nil {
				return nil, fmt.Errorf("serialize: bad import linkage in %q: %w", line, err)
			}
			imp := p.g.Import(tokens[3], rvsdg.Linkage(linkage), typ)
			refs[fmt.Sprintf("a%d", len(refs))] = imp.Output
		} else {
			out := root.AddArgument(typ)
			refs[fmt.Sprintf("a%d", len(refs))] = out
		}
	}

	if err := p.parseNodes(root, refs); err != nil {
		return nil, err
	}

	for {
		line, ok := p.sc.peek()
		if !ok {
			return nil, fmt.Errorf("serialize: unterminated root region")
		}
		tokens := strings.Fields(line)
		if tokens[0] == "END" {
			p.sc.pos++
			return refs, nil
		}
		if tokens[0] != "RESULT" {
			return nil, fmt.Errorf("serialize: expected RESULT or END, got %q", line)
		}
		p.sc.pos++
		origin, ok := refs[tokens[1]]
		if !ok {
			return nil, fmt.Errorf("serialize: unresolved reference %q", tokens[1])
		}
		if len(tokens) >= 4 && tokens[2] == "EXPORT" {
			if _, err := p.g.Export(tokens[3], origin); err != nil {
				return nil, err
			}
		} else {
			if _, err := root.AddResult(origin.Type(), origin); err != nil {
				return nil, err
			}
		}
	}
}

// parseSubBody parses a structural node's subregion body: sub's arguments
// already exist (allocated by the NewX call that created it); this only
// consumes NODE lines and, unless skipResults, trailing RESULT lines, up
// to and including the terminating END.
func (p *parser) parseSubBody(sub *rvsdg.Region, skipResults bool) (refPorts, error) {
	refs := make(refPorts, len(sub.Arguments()))
	for i, arg := range sub.Arguments() {
		refs[fmt.Sprintf("a%d", i)] = arg
	}
	if err := p.parseNodes(sub, refs); err != nil {
		return nil, err
	}
	if !skipResults {
		for {
			line, ok := p.sc.peek()
			if !ok {
				return nil, fmt.Errorf("serialize: unterminated subregion")
			}
			tokens := strings.Fields(line)
			if tokens[0] == "END" {
				break
			}
			if tokens[0] != "RESULT" {
				return nil, fmt.Errorf("serialize: expected RESULT or END, got %q", line)
			}
			p.sc.pos++
			origin, ok := refs[tokens[1]]
			if !ok {
				return nil, fmt.Errorf("serialize: unresolved reference %q", tokens[1])
			}
			if _, err := sub.AddResult(origin.Type(), origin); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect("END"); err != nil {
		return nil, err
	}
	return refs, nil
}

func (p *parser) parseNodes(r *rvsdg.Region, refs refPorts) error {
	for {
		line, ok := p.sc.peek()
		if !ok {
			return fmt.Errorf("serialize: unterminated region")
		}
		tokens := strings.Fields(line)
		if tokens[0] != "NODE" {
			return nil
		}
		p.sc.pos++
		n, err := p.parseNode(r, tokens, refs)
		if err != nil {
			return err
		}
		ni := len(r.Nodes()) - 1
		for oi, out := range n.Outputs() {
			refs[fmt.Sprintf("n%d.%d", ni, oi)] = out
		}
	}
}

func (p *parser) parseNode(r *rvsdg.Region, header []string, refs refPorts) (*rvsdg.Node, error) {
	switch header[1] {
	case "OP":
		tag, payload := header[2], ""
		if len(header) > 3 {
			payload = header[3]
		}
		op, err := p.registry.decode(tag, payload)
		if err != nil {
			return nil, err
		}
		operands, err := p.readOperands(refs)
		if err != nil {
			return nil, err
		}
		return r.CreateSimpleNode(op, operands)
	case "GAMMA":
		k, err := strconv.Atoi(header[2])
		if err != nil {
			return nil, err
		}
		operands, err := p.readOperands(refs)
		if err != nil {
			return nil, err
		}
		n, err := rvsdg.NewGamma(r, operands[0], operands[1:], k)
		if err != nil {
			return nil, err
		}
		kind := n.Kind().(*rvsdg.GammaKind)
		subRefs := make([]refPorts, k)
		for i := 0; i < k; i++ {
			if _, err := p.expect("SUB"); err != nil {
				return nil, err
			}
			sr, err := p.parseSubBody(kind.Subregions[i], true)
			if err != nil {
				return nil, err
			}
			subRefs[i] = sr
		}
		for {
			line, ok := p.sc.peek()
			if !ok || !strings.HasPrefix(line, "EXIT") {
				break
			}
			p.sc.pos++
			tokens := strings.Fields(line)
			csv := ""
			if len(tokens) > 1 {
				csv = tokens[1]
			}
			names := strings.Split(csv, ",")
			if len(names) != k {
				return nil, fmt.Errorf("serialize: EXIT line %q has %d refs, want %d", line, len(names), k)
			}
			origins := make([]*rvsdg.OutputPort, k)
			for i, name := range names {
				origin, ok := subRefs[i][name]
				if !ok {
					return nil, fmt.Errorf("serialize: unresolved reference %q", name)
				}
				origins[i] = origin
			}
			if _, err := rvsdg.GammaAddExitVar(n, origins); err != nil {
				return nil, err
			}
		}
		return n, nil
	case "THETA":
		operands, err := p.readOperands(refs)
		if err != nil {
			return nil, err
		}
		n, err := rvsdg.NewTheta(r, operands)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("SUB"); err != nil {
			return nil, err
		}
		kind := n.Kind().(*rvsdg.ThetaKind)
		if _, err := p.parseSubBody(kind.Subregion, false); err != nil {
			return nil, err
		}
		results := kind.Subregion.Results()
		if len(results) == 0 {
			return nil, fmt.Errorf("serialize: theta subregion declared no results")
		}
		predicate := results[0].Producer()
		next := make([]*rvsdg.OutputPort, len(results)-1)
		for i, in := range results[1:] {
			next[i] = in.Producer()
		}
		if err := rvsdg.ThetaFinalize(n, predicate, next); err != nil {
			return nil, err
		}
		return n, nil
	case "LAMBDA":
		name := header[2]
		linkage, err := strconv.Atoi(header[3])
		if err != nil {
			return nil, err
		}
		ctxCount, err := strconv.Atoi(header[4])
		if err != nil {
			return nil, err
		}
		paramTypes, err := decodeHeaderTypeList(fieldOrEmpty(header, 5))
		if err != nil {
			return nil, err
		}
		retTypes, err := decodeHeaderTypeList(fieldOrEmpty(header, 6))
		if err != nil {
			return nil, err
		}
		operands, err := p.readOperands(refs)
		if err != nil {
			return nil, err
		}
		if len(operands) != ctxCount {
			return nil, fmt.Errorf("serialize: lambda %q expected %d context vars, got %d", name, ctxCount, len(operands))
		}
		n, err := rvsdg.NewLambda(r, name, rvsdg.Linkage(linkage), operands, paramTypes, retTypes)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("SUB"); err != nil {
			return nil, err
		}
		kind := n.Kind().(*rvsdg.LambdaKind)
		if _, err := p.parseSubBody(kind.Subregion, false); err != nil {
			return nil, err
		}
		results := kind.Subregion.Results()
		retOrigins := make([]*rvsdg.OutputPort, len(results))
		for i, in := range results {
			retOrigins[i] = in.Producer()
		}
		if err := rvsdg.LambdaFinalize(n, retOrigins); err != nil {
			return nil, err
		}
		return n, nil
	case "DELTA":
		name := header[2]
		linkage, err := strconv.Atoi(header[3])
		if err != nil {
			return nil, err
		}
		constant, err := strconv.ParseBool(header[4])
		if err != nil {
			return nil, err
		}
		valueType, err := decodeType(header[5])
		if err != nil {
			return nil, err
		}
		operands, err := p.readOperands(refs)
		if err != nil {
			return nil, err
		}
		n, err := rvsdg.NewDelta(r, name, rvsdg.Linkage(linkage), constant, operands, valueType)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("SUB"); err != nil {
			return nil, err
		}
		kind := n.Kind().(*rvsdg.DeltaKind)
		if _, err := p.parseSubBody(kind.Subregion, false); err != nil {
			return nil, err
		}
		results := kind.Subregion.Results()
		if len(results) != 1 {
			return nil, fmt.Errorf("serialize: delta %q expected exactly one result, got %d", name, len(results))
		}
		if err := rvsdg.DeltaFinalize(n, results[0].Producer()); err != nil {
			return nil, err
		}
		return n, nil
	case "PHI":
		ctxCount, err := strconv.Atoi(header[2])
		if err != nil {
			return nil, err
		}
		recTypes, err := decodeHeaderTypeList(fieldOrEmpty(header, 3))
		if err != nil {
			return nil, err
		}
		operands, err := p.readOperands(refs)
		if err != nil {
			return nil, err
		}
		if len(operands) != ctxCount {
			return nil, fmt.Errorf("serialize: phi expected %d context vars, got %d", ctxCount, len(operands))
		}
		n, err := rvsdg.NewPhi(r, operands, recTypes)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("SUB"); err != nil {
			return nil, err
		}
		kind := n.Kind().(*rvsdg.PhiKind)
		if _, err := p.parseSubBody(kind.Subregion, false); err != nil {
			return nil, err
		}
		results := kind.Subregion.Results()
		values := make([]*rvsdg.OutputPort, len(results))
		for i, in := range results {
			values[i] = in.Producer()
		}
		if err := rvsdg.PhiFinalize(n, values); err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("serialize: unknown node kind keyword %q", header[1])
	}
}

func fieldOrEmpty(tokens []string, i int) string {
	if i < len(tokens) {
		return tokens[i]
	}
	return ""
}

// decodeHeaderTypeList is the inverse of dump.go's headerTypeList: "-"
// decodes to an empty (nil) list.
func decodeHeaderTypeList(s string) ([]rvsdg.Type, error) {
	if s == "-" || s == "" {
		return nil, nil
	}
	return decodeTypeList(s)
}

// Package serialize renders a *rvsdg.Graph as a deterministic, line-
// oriented text format and parses it back. The format exists for the
// round-trip property: dumping a graph and reparsing it must reconstruct
// the exact same node shape, not a renormalized one, so every simple node
// is rebuilt with Region.CreateSimpleNode rather than Region.AddNode.
//
// Concrete operators are opaque to this package; callers supply a
// Registry of Codecs so serialize never imports a domain operator
// package directly, the same way passes.FoldConstantGammas takes a
// detector callback instead of importing ops.
package serialize

import (
	"fmt"

	"github.com/halvorlinder/jlm/rvsdg"
)

// Codec knows how to render one class of Operator as a single
// whitespace-free payload token and parse it back. Encode's output must
// not contain whitespace; a codec with a payload that needs to embed
// structure should use its own delimiter (':', ';', etc.), matching how
// encodeType avoids spaces.
type Codec interface {
	// Tag is the keyword written ahead of the payload to select this
	// codec on decode. Tags must be unique within a Registry.
	Tag() string

	// Matches reports whether this codec handles op.
	Matches(op rvsdg.Operator) bool

	// Encode renders op as a single whitespace-free token.
	Encode(op rvsdg.Operator) string

	// Decode parses a payload previously produced by Encode.
	Decode(payload string) (rvsdg.Operator, error)
}

// Registry is an ordered set of Codecs consulted by tag on decode and by
// Matches (first match wins) on encode.
type Registry struct {
	codecs []Codec
	byTag  map[string]Codec
}

// NewRegistry builds a Registry from codecs, erroring if two codecs
// declare the same tag.
func NewRegistry(codecs ...Codec) (*Registry, error) {
	reg := &Registry{byTag: make(map[string]Codec, len(codecs))}
	for _, c := range codecs {
		if _, dup := reg.byTag[c.Tag()]; dup {
			return nil, fmt.Errorf("serialize: duplicate codec tag %q", c.Tag())
		}
		reg.byTag[c.Tag()] = c
		reg.codecs = append(reg.codecs, c)
	}
	return reg, nil
}

func (r *Registry) encode(op rvsdg.Operator) (tag, payload string, err error) {
	for _, c := range r.codecs {
		if c.Matches(op) {
			return c.Tag(), c.Encode(op), nil
		}
	}
	return "", "", fmt.Errorf("serialize: no codec registered for operator %q", op.DebugString())
}

func (r *Registry) decode(tag, payload string) (rvsdg.Operator, error) {
	c, ok := r.byTag[tag]
	if !ok {
		return nil, fmt.Errorf("serialize: no codec registered for tag %q", tag)
	}
	return c.Decode(payload)
}

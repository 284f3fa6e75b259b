package serialize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/halvorlinder/jlm/rvsdg"
)

// EncodeType renders t as the same single whitespace-free token Dump uses
// for argument/result types, for Codecs that need to embed a Type inside
// an operator payload (e.g. an Alloca's value type).
func EncodeType(t rvsdg.Type) string { return encodeType(t) }

// DecodeType is the inverse of EncodeType.
func DecodeType(s string) (rvsdg.Type, error) { return decodeType(s) }

// encodeType renders t as a single whitespace-free token. The three
// compound shapes (array/record/function) parenthesize their element
// types so decodeType can recover nesting without any separate length
// prefix.
func encodeType(t rvsdg.Type) string {
	switch v := t.(type) {
	case rvsdg.BitsType:
		return "bits:" + strconv.FormatUint(uint64(v.Width), 10)
	case rvsdg.FloatType:
		return "float:" + encodeFloatSize(v.Size)
	case rvsdg.ControlType:
		return "ctl:" + strconv.FormatUint(uint64(v.NChoices), 10)
	case rvsdg.IOStateType:
		return "iostate"
	case rvsdg.MemoryStateType:
		return "memstate"
	case rvsdg.LoopStateType:
		return "loopstate"
	case rvsdg.PointerType:
		return "ptr"
	case rvsdg.ArrayType:
		return "array:" + strconv.FormatUint(v.Length, 10) + "(" + encodeType(v.Element) + ")"
	case rvsdg.RecordType:
		return "record(" + encodeNestedTypeList(v.Fields) + ")"
	case rvsdg.FunctionType:
		return "fn(" + encodeNestedTypeList(v.Args) + ")->(" + encodeNestedTypeList(v.Results) + ")"
	default:
		panic(fmt.Sprintf("serialize: unknown type %T", t))
	}
}

func encodeTypeList(ts []rvsdg.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = encodeType(t)
	}
	return strings.Join(parts, ";")
}

// encodeNestedTypeList renders the element list inside record(...) and
// fn(...)->(...), ','-separated as typeScanner.parseTypeList reads it.
func encodeNestedTypeList(ts []rvsdg.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = encodeType(t)
	}
	return strings.Join(parts, ",")
}

func encodeFloatSize(s rvsdg.FloatSize) string {
	switch s {
	case rvsdg.FloatHalf:
		return "half"
	case rvsdg.Float32:
		return "f32"
	case rvsdg.Float64:
		return "f64"
	case rvsdg.FloatX86FP80:
		return "x86fp80"
	case rvsdg.Float128:
		return "f128"
	default:
		panic(fmt.Sprintf("serialize: unknown float size %d", s))
	}
}

func decodeFloatSize(s string) (rvsdg.FloatSize, error) {
	switch s {
	case "half":
		return rvsdg.FloatHalf, nil
	case "f32":
		return rvsdg.Float32, nil
	case "f64":
		return rvsdg.Float64, nil
	case "x86fp80":
		return rvsdg.FloatX86FP80, nil
	case "f128":
		return rvsdg.Float128, nil
	default:
		return 0, fmt.Errorf("serialize: unknown float size tag %q", s)
	}
}

// decodeType parses a single token produced by encodeType back into a
// rvsdg.Type, erroring on any trailing or malformed input.
func decodeType(s string) (rvsdg.Type, error) {
	sc := &typeScanner{s: s}
	t, err := sc.parseType()
	if err != nil {
		return nil, err
	}
	if sc.pos != len(sc.s) {
		return nil, fmt.Errorf("serialize: trailing input %q after type %q", sc.s[sc.pos:], s)
	}
	return t, nil
}

func decodeTypeList(s string) ([]rvsdg.Type, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	out := make([]rvsdg.Type, len(parts))
	for i, p := range parts {
		t, err := decodeType(p)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// typeScanner is a minimal recursive-descent reader over a single type
// token, used instead of strings.Split because array/record/function
// types nest arbitrarily and a naive split on ',' or '(' would need to
// track bracket depth anyway.
type typeScanner struct {
	s   string
	pos int
}

func (sc *typeScanner) peek() byte {
	if sc.pos >= len(sc.s) {
		return 0
	}
	return sc.s[sc.pos]
}

func (sc *typeScanner) consume(b byte) error {
	if sc.peek() != b {
		return fmt.Errorf("serialize: expected %q at offset %d in %q", b, sc.pos, sc.s)
	}
	sc.pos++
	return nil
}

func (sc *typeScanner) readAlnum() string {
	start := sc.pos
	for sc.pos < len(sc.s) {
		c := sc.s[sc.pos]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			sc.pos++
			continue
		}
		break
	}
	return sc.s[start:sc.pos]
}

func (sc *typeScanner) readUint() (uint64, error) {
	start := sc.pos
	for sc.pos < len(sc.s) && sc.s[sc.pos] >= '0' && sc.s[sc.pos] <= '9' {
		sc.pos++
	}
	if start == sc.pos {
		return 0, fmt.Errorf("serialize: expected a number at offset %d in %q", start, sc.s)
	}
	return strconv.ParseUint(sc.s[start:sc.pos], 10, 64)
}

func (sc *typeScanner) parseType() (rvsdg.Type, error) {
	tag := sc.readAlnum()
	switch tag {
	case "bits":
		if err := sc.consume(':'); err != nil {
			return nil, err
		}
		w, err := sc.readUint()
		if err != nil {
			return nil, err
		}
		return rvsdg.BitsType{Width: uint32(w)}, nil
	case "float":
		if err := sc.consume(':'); err != nil {
			return nil, err
		}
		size, err := decodeFloatSize(sc.readAlnum())
		if err != nil {
			return nil, err
		}
		return rvsdg.FloatType{Size: size}, nil
	case "ctl":
		if err := sc.consume(':'); err != nil {
			return nil, err
		}
		n, err := sc.readUint()
		if err != nil {
			return nil, err
		}
		return rvsdg.ControlType{NChoices: uint32(n)}, nil
	case "iostate":
		return rvsdg.IOStateType{}, nil
	case "memstate":
		return rvsdg.MemoryStateType{}, nil
	case "loopstate":
		return rvsdg.LoopStateType{}, nil
	case "ptr":
		return rvsdg.PointerType{}, nil
	case "array":
		if err := sc.consume(':'); err != nil {
			return nil, err
		}
		n, err := sc.readUint()
		if err != nil {
			return nil, err
		}
		if err := sc.consume('('); err != nil {
			return nil, err
		}
		elem, err := sc.parseType()
		if err != nil {
			return nil, err
		}
		if err := sc.consume(')'); err != nil {
			return nil, err
		}
		return rvsdg.ArrayType{Element: elem, Length: n}, nil
	case "record":
		if err := sc.consume('('); err != nil {
			return nil, err
		}
		fields, err := sc.parseTypeList(')')
		if err != nil {
			return nil, err
		}
		if err := sc.consume(')'); err != nil {
			return nil, err
		}
		return rvsdg.RecordType{Fields: fields}, nil
	case "fn":
		if err := sc.consume('('); err != nil {
			return nil, err
		}
		args, err := sc.parseTypeList(')')
		if err != nil {
			return nil, err
		}
		if err := sc.consume(')'); err != nil {
			return nil, err
		}
		if err := sc.consume('-'); err != nil {
			return nil, err
		}
		if err := sc.consume('>'); err != nil {
			return nil, err
		}
		if err := sc.consume('('); err != nil {
			return nil, err
		}
		results, err := sc.parseTypeList(')')
		if err != nil {
			return nil, err
		}
		if err := sc.consume(')'); err != nil {
			return nil, err
		}
		return rvsdg.FunctionType{Args: args, Results: results}, nil
	default:
		return nil, fmt.Errorf("serialize: unknown type tag %q at offset %d in %q", tag, sc.pos-len(tag), sc.s)
	}
}

// parseTypeList reads a ','-separated list of types up to (but not
// consuming) closer.
func (sc *typeScanner) parseTypeList(closer byte) ([]rvsdg.Type, error) {
	var out []rvsdg.Type
	if sc.peek() == closer {
		return out, nil
	}
	for {
		t, err := sc.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if sc.peek() == ',' {
			sc.pos++
			continue
		}
		break
	}
	return out, nil
}

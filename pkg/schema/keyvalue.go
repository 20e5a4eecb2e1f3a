package schema

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies the wire type of a KeyValue node.
type ValueKind uint8

const (
	KindNone ValueKind = iota // subtree node, value is Children
	KindString
	KindInt32
	KindFloat32
	KindPointer
	KindWideString
	KindColor
	KindUInt64
	kindEnd // terminates a sibling list, never materialized
)

// KeyValue is one node of the binary definition document: a named value or
// a named subtree. Sibling order is document order.
type KeyValue struct {
	Name     string
	Kind     ValueKind
	Str      string
	Int      int64
	Uint     uint64
	Float    float64
	Children []*KeyValue
}

// ParseKeyValue reads a binary key-value document and returns its root node.
// A document with multiple top-level nodes gets a synthetic unnamed root.
func ParseKeyValue(r io.Reader) (*KeyValue, error) {
	br := bufio.NewReader(r)

	nodes, err := parseSiblings(br, 0)
	if err != nil {
		return nil, err
	}

	switch len(nodes) {
	case 0:
		return nil, fmt.Errorf("empty document")
	case 1:
		return nodes[0], nil
	default:
		return &KeyValue{Kind: KindNone, Children: nodes}, nil
	}
}

const maxDepth = 64

// parseSiblings reads nodes until an End marker or EOF at the top level.
func parseSiblings(br *bufio.Reader, depth int) ([]*KeyValue, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("document nested deeper than %d levels", maxDepth)
	}

	var nodes []*KeyValue
	for {
		kind, err := br.ReadByte()
		if err == io.EOF && depth == 0 {
			return nodes, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read node type: %w", err)
		}

		if ValueKind(kind) == kindEnd {
			return nodes, nil
		}

		node, err := parseNode(br, ValueKind(kind), depth)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
}

func parseNode(br *bufio.Reader, kind ValueKind, depth int) (*KeyValue, error) {
	name, err := readCString(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read node name: %w", err)
	}

	node := &KeyValue{Name: name, Kind: kind}

	switch kind {
	case KindNone:
		children, err := parseSiblings(br, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = children

	case KindString:
		s, err := readCString(br)
		if err != nil {
			return nil, fmt.Errorf("failed to read string value of %q: %w", name, err)
		}
		node.Str = s

	case KindInt32, KindPointer, KindColor:
		var v int32
		if err := binary.Read(br, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("failed to read int value of %q: %w", name, err)
		}
		node.Int = int64(v)

	case KindFloat32:
		var bits uint32
		if err := binary.Read(br, binary.LittleEndian, &bits); err != nil {
			return nil, fmt.Errorf("failed to read float value of %q: %w", name, err)
		}
		node.Float = float64(math.Float32frombits(bits))

	case KindUInt64:
		var v uint64
		if err := binary.Read(br, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("failed to read uint64 value of %q: %w", name, err)
		}
		node.Uint = v

	case KindWideString:
		return nil, fmt.Errorf("wide string values are not supported (node %q)", name)

	default:
		return nil, fmt.Errorf("unknown node type 0x%02x (node %q)", uint8(kind), name)
	}

	return node, nil
}

// readCString reads a NUL-terminated UTF-8 string.
func readCString(br *bufio.Reader) (string, error) {
	s, err := br.ReadString(0)
	if err != nil {
		return "", err
	}
	return s[:len(s)-1], nil
}

// Child returns the first child whose name matches, ignoring case.
// Returns nil when absent.
func (kv *KeyValue) Child(name string) *KeyValue {
	if kv == nil {
		return nil
	}
	for _, c := range kv.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// IntValue coerces the named child to an integer, using def when the child
// is missing or not convertible.
func (kv *KeyValue) IntValue(name string, def int64) int64 {
	c := kv.Child(name)
	if c == nil {
		return def
	}
	switch c.Kind {
	case KindInt32, KindPointer, KindColor:
		return c.Int
	case KindUInt64:
		return int64(c.Uint)
	case KindFloat32:
		return int64(c.Float)
	case KindString:
		if v, err := strconv.ParseInt(strings.TrimSpace(c.Str), 10, 64); err == nil {
			return v
		}
		return def
	default:
		return def
	}
}

// FloatValue coerces the named child to a float, using def when the child
// is missing or not convertible.
func (kv *KeyValue) FloatValue(name string, def float64) float64 {
	c := kv.Child(name)
	if c == nil {
		return def
	}
	switch c.Kind {
	case KindFloat32:
		return c.Float
	case KindInt32, KindPointer, KindColor:
		return float64(c.Int)
	case KindUInt64:
		return float64(c.Uint)
	case KindString:
		if v, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64); err == nil {
			return v
		}
		return def
	default:
		return def
	}
}

// StringValue coerces the named child to a string, using def when the child
// is missing.
func (kv *KeyValue) StringValue(name string, def string) string {
	c := kv.Child(name)
	if c == nil {
		return def
	}
	return c.asString(def)
}

// BoolValue treats any non-zero integer or "1"/"true" string as true.
func (kv *KeyValue) BoolValue(name string, def bool) bool {
	c := kv.Child(name)
	if c == nil {
		return def
	}
	switch c.Kind {
	case KindInt32, KindPointer, KindColor:
		return c.Int != 0
	case KindUInt64:
		return c.Uint != 0
	case KindFloat32:
		return c.Float != 0
	case KindString:
		s := strings.TrimSpace(c.Str)
		return s == "1" || strings.EqualFold(s, "true")
	default:
		return def
	}
}

func (kv *KeyValue) asString(def string) string {
	switch kv.Kind {
	case KindString:
		return kv.Str
	case KindInt32, KindPointer, KindColor:
		return strconv.FormatInt(kv.Int, 10)
	case KindUInt64:
		return strconv.FormatUint(kv.Uint, 10)
	case KindFloat32:
		return strconv.FormatFloat(kv.Float, 'g', -1, 64)
	default:
		return def
	}
}

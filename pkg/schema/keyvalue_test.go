package schema

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kvWriter builds binary key-value documents for tests.
type kvWriter struct {
	buf bytes.Buffer
}

func (w *kvWriter) begin(name string) *kvWriter {
	w.buf.WriteByte(byte(KindNone))
	w.cstring(name)
	return w
}

func (w *kvWriter) end() *kvWriter {
	w.buf.WriteByte(byte(kindEnd))
	return w
}

func (w *kvWriter) str(name, value string) *kvWriter {
	w.buf.WriteByte(byte(KindString))
	w.cstring(name)
	w.cstring(value)
	return w
}

func (w *kvWriter) int32(name string, value int32) *kvWriter {
	w.buf.WriteByte(byte(KindInt32))
	w.cstring(name)
	binary.Write(&w.buf, binary.LittleEndian, value)
	return w
}

func (w *kvWriter) float32(name string, value float32) *kvWriter {
	w.buf.WriteByte(byte(KindFloat32))
	w.cstring(name)
	binary.Write(&w.buf, binary.LittleEndian, math.Float32bits(value))
	return w
}

func (w *kvWriter) uint64(name string, value uint64) *kvWriter {
	w.buf.WriteByte(byte(KindUInt64))
	w.cstring(name)
	binary.Write(&w.buf, binary.LittleEndian, value)
	return w
}

func (w *kvWriter) cstring(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

func (w *kvWriter) bytes() []byte {
	return w.buf.Bytes()
}

func TestParseKeyValue_TypedValues(t *testing.T) {
	w := &kvWriter{}
	w.begin("root").
		str("title", "Portal").
		int32("count", 42).
		float32("ratio", 0.5).
		uint64("big", 1<<40).
		end()

	root, err := ParseKeyValue(bytes.NewReader(w.bytes()))
	require.NoError(t, err)

	assert.Equal(t, "root", root.Name)
	assert.Equal(t, "Portal", root.StringValue("title", ""))
	assert.Equal(t, int64(42), root.IntValue("count", 0))
	assert.InDelta(t, 0.5, root.FloatValue("ratio", 0), 1e-9)
	assert.Equal(t, int64(1<<40), root.IntValue("big", 0))
}

func TestParseKeyValue_NestedSubtrees(t *testing.T) {
	w := &kvWriter{}
	w.begin("root").
		begin("stats").
		begin("1").
		str("name", "kills").
		end().
		end().
		end()

	root, err := ParseKeyValue(bytes.NewReader(w.bytes()))
	require.NoError(t, err)

	stats := root.Child("stats")
	require.NotNil(t, stats)
	require.Len(t, stats.Children, 1)
	assert.Equal(t, "kills", stats.Children[0].StringValue("name", ""))
}

func TestParseKeyValue_ChildIsCaseInsensitive(t *testing.T) {
	w := &kvWriter{}
	w.begin("root").str("English", "hello").end()

	root, err := ParseKeyValue(bytes.NewReader(w.bytes()))
	require.NoError(t, err)

	assert.NotNil(t, root.Child("english"))
	assert.Equal(t, "hello", root.StringValue("ENGLISH", ""))
}

func TestParseKeyValue_Coercions(t *testing.T) {
	w := &kvWriter{}
	w.begin("root").
		str("num", "17").
		str("flt", "2.25").
		str("on", "1").
		int32("off", 0).
		end()

	root, err := ParseKeyValue(bytes.NewReader(w.bytes()))
	require.NoError(t, err)

	assert.Equal(t, int64(17), root.IntValue("num", 0))
	assert.InDelta(t, 2.25, root.FloatValue("flt", 0), 1e-9)
	assert.True(t, root.BoolValue("on", false))
	assert.False(t, root.BoolValue("off", true))
	assert.Equal(t, int64(-1), root.IntValue("missing", -1))
}

func TestParseKeyValue_EmptyDocument(t *testing.T) {
	_, err := ParseKeyValue(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestParseKeyValue_TruncatedValue(t *testing.T) {
	w := &kvWriter{}
	w.begin("root").int32("count", 42).end()

	data := w.bytes()
	_, err := ParseKeyValue(bytes.NewReader(data[:len(data)-6]))
	assert.Error(t, err)
}

func TestParseKeyValue_UnknownNodeType(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x0c)
	buf.WriteString("bogus")
	buf.WriteByte(0)

	_, err := ParseKeyValue(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node type")
}

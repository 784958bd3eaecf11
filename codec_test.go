package nbt_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/astei/nbt"
)

// bigTree builds a tree exercising every tag type, nested compounds and
// lists, boundary numeric values and an empty list.
func bigTree(t *testing.T) *nbt.Compound {
	t.Helper()

	byteArray := make(nbt.ByteArray, 1000)
	for n := range byteArray {
		byteArray[n] = int8((n*n*255 + n*7) % 100)
	}

	return compoundOf(
		"longTest", nbt.Long(math.MaxInt64),
		"longNegative", nbt.Long(math.MinInt64),
		"shortTest", nbt.Short(32767),
		"stringTest", nbt.String("HELLO WORLD THIS IS A TEST STRING ÅÄÖ!"),
		"floatTest", nbt.Float(0.49823147),
		"intTest", nbt.Int(2147483647),
		"nested compound test", compoundOf(
			"ham", compoundOf("name", nbt.String("Hampus"), "value", nbt.Float(0.75)),
			"egg", compoundOf("name", nbt.String("Eggbert"), "value", nbt.Float(0.5)),
		),
		"listTest (long)", mustList(t, nbt.TypeLong,
			nbt.Long(11), nbt.Long(12), nbt.Long(13), nbt.Long(14), nbt.Long(15)),
		"listTest (compound)", mustList(t, nbt.TypeCompound,
			compoundOf("name", nbt.String("Compound tag #0"), "created-on", nbt.Long(1264099775885)),
			compoundOf("name", nbt.String("Compound tag #1"), "created-on", nbt.Long(1264099775885)),
		),
		"listTest (empty)", mustList(t, nbt.TypeEnd),
		"byteTest", nbt.Byte(127),
		"byteNegative", nbt.Byte(-128),
		"byteArrayTest", byteArray,
		"intArrayTest", nbt.IntArray{math.MinInt32, -1, 0, 1, math.MaxInt32},
		"longArrayTest", nbt.LongArray{math.MinInt64, -1, 0, 1, math.MaxInt64},
		"emptyArrays", compoundOf(
			"bytes", nbt.ByteArray{},
			"ints", nbt.IntArray{},
			"longs", nbt.LongArray{},
		),
		"doubleTest", nbt.Double(0.4931287132182315),
		"emptyCompound", nbt.NewCompound(),
	)
}

func TestRoundTrip(t *testing.T) {
	tree := bigTree(t)

	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoder(&buf).Encode(tree, "Level"))

	decoded, name, err := nbt.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	require.Equal(t, "Level", name)
	require.True(t, nbt.Equal(tree, decoded))
	require.Zero(t, buf.Len(), "unread data remaining")
}

func TestRoundTripEachType(t *testing.T) {
	for _, tc := range []struct {
		name string
		tag  nbt.Tag
	}{
		{"byte", nbt.Byte(-5)},
		{"short", nbt.Short(-300)},
		{"int", nbt.Int(-70000)},
		{"long", nbt.Long(-5000000000)},
		{"float", nbt.Float(float32(math.Pi))},
		{"double", nbt.Double(math.Pi)},
		{"byteArray", nbt.ByteArray{0, 1, -1, 127, -128}},
		{"string", nbt.String("Lorem ipsum\n\thello\tworld")},
		{"emptyString", nbt.String("")},
		{"intArray", nbt.IntArray{-9, 0, 9}},
		{"longArray", nbt.LongArray{-8, 0, 8}},
		{"compound", compoundOf("k", nbt.Int(1))},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, nbt.NewEncoder(&buf).Encode(tc.tag, tc.name))

			decoded, name, err := nbt.NewDecoder(&buf).Decode()
			require.NoError(t, err)
			require.Equal(t, tc.name, name)
			require.True(t, nbt.Equal(tc.tag, decoded))
		})
	}
}

func TestRoundTripNestedLists(t *testing.T) {
	inner1 := mustList(t, nbt.TypeInt, nbt.Int(1))
	inner2 := mustList(t, nbt.TypeInt, nbt.Int(-2))
	outer := mustList(t, nbt.TypeList, inner1, inner2)

	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoder(&buf).Encode(outer, ""))

	decoded, _, err := nbt.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	require.True(t, nbt.Equal(outer, decoded))
}

// TestEncodeExactBytes pins the wire format with Notch's classic test file:
// a compound named "hello world" holding name=Bananrama.
func TestEncodeExactBytes(t *testing.T) {
	root := compoundOf("name", nbt.String("Bananrama"))

	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoder(&buf).Encode(root, "hello world"))

	var want []byte
	want = append(want, 0x0a, 0x00, 0x0b)
	want = append(want, "hello world"...)
	want = append(want, 0x08, 0x00, 0x04)
	want = append(want, "name"...)
	want = append(want, 0x00, 0x09)
	want = append(want, "Bananrama"...)
	want = append(want, 0x00)

	if diff := cmp.Diff(want, buf.Bytes()); diff != "" {
		t.Errorf("encoded bytes mismatch (-want +got):\n%s", diff)
	}

	decoded, name, err := nbt.NewDecoder(bytes.NewReader(want)).Decode()
	require.NoError(t, err)
	require.Equal(t, "hello world", name)
	require.True(t, nbt.Equal(root, decoded))
}

func TestDecodeTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoder(&buf).Encode(bigTree(t), ""))
	full := buf.Bytes()

	// Drop the End terminator of the root compound, then cut deeper.
	for _, cut := range []int{len(full) - 1, len(full) / 2, 5, 1} {
		_, _, err := nbt.NewDecoder(bytes.NewReader(full[:cut])).Decode()
		require.ErrorIs(t, err, nbt.ErrUnexpectedEOF, "cut at %d", cut)
	}

	_, _, err := nbt.NewDecoder(bytes.NewReader(nil)).Decode()
	require.ErrorIs(t, err, nbt.ErrUnexpectedEOF)
}

func TestDecodeUnknownTag(t *testing.T) {
	for _, id := range []byte{13, 42, 0xff} {
		_, _, err := nbt.NewDecoder(bytes.NewReader([]byte{id, 0, 0})).Decode()
		require.ErrorIs(t, err, nbt.ErrUnknownTag, "id %d", id)
	}

	// Unknown id for a compound child.
	data := []byte{0x0a, 0x00, 0x00, 13, 0x00, 0x00}
	_, _, err := nbt.NewDecoder(bytes.NewReader(data)).Decode()
	require.ErrorIs(t, err, nbt.ErrUnknownTag)
}

func TestDecodeEndAtRoot(t *testing.T) {
	_, _, err := nbt.NewDecoder(bytes.NewReader([]byte{0x00})).Decode()
	require.ErrorIs(t, err, nbt.ErrUnknownTag)
}

func TestDecodeDuplicateName(t *testing.T) {
	// Unnamed root compound with children a=1, b=2, c=3 and a second b=9.
	// The later value wins and b keeps its slot between a and c.
	var buf bytes.Buffer
	buf.Write([]byte{0x0a, 0x00, 0x00})
	for _, child := range []struct {
		name  string
		value byte
	}{{"a", 1}, {"b", 2}, {"c", 3}, {"b", 9}} {
		buf.Write([]byte{0x01, 0x00, 0x01})
		buf.WriteString(child.name)
		buf.WriteByte(child.value)
	}
	buf.WriteByte(0x00)

	decoded, _, err := nbt.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	root, ok := decoded.(*nbt.Compound)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "c"}, root.Keys())
	tag, ok := root.Get("b")
	require.True(t, ok)
	require.Equal(t, nbt.Byte(9), tag)

	// The order also survives a re-encode.
	var out bytes.Buffer
	require.NoError(t, nbt.NewEncoder(&out).Encode(root, ""))
	again, _, err := nbt.NewDecoder(&out).Decode()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, again.(*nbt.Compound).Keys())
}

func TestDecodeNegativeLength(t *testing.T) {
	// Root ByteArray with length -1.
	data := []byte{0x07, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}
	_, _, err := nbt.NewDecoder(bytes.NewReader(data)).Decode()
	require.ErrorIs(t, err, nbt.ErrNegativeLength)

	// List with count -1.
	data = []byte{0x09, 0x00, 0x00, 0x03, 0xff, 0xff, 0xff, 0xff}
	_, _, err = nbt.NewDecoder(bytes.NewReader(data)).Decode()
	require.ErrorIs(t, err, nbt.ErrNegativeLength)
}

func TestDecodeNonEmptyEndList(t *testing.T) {
	data := []byte{0x09, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	_, _, err := nbt.NewDecoder(bytes.NewReader(data)).Decode()
	require.ErrorIs(t, err, nbt.ErrUnknownTag)
}

func TestDecodeDepthLimit(t *testing.T) {
	// 600 nested unnamed compounds overflow the decoder's depth bound long
	// before the stream runs out.
	var buf bytes.Buffer
	buf.Write([]byte{0x0a, 0x00, 0x00})
	for i := 0; i < 600; i++ {
		buf.Write([]byte{0x0a, 0x00, 0x01, 'a'})
	}

	_, _, err := nbt.NewDecoder(&buf).Decode()
	require.ErrorIs(t, err, nbt.ErrDepthExceeded)
}

func TestMaxLengthStrings(t *testing.T) {
	name := strings.Repeat("n", math.MaxUint16)
	value := nbt.String(strings.Repeat("v", math.MaxUint16))
	root := compoundOf(name, value)

	var buf bytes.Buffer
	require.NoError(t, nbt.NewEncoder(&buf).Encode(root, ""))

	decoded, _, err := nbt.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	require.True(t, nbt.Equal(root, decoded))

	oversized := nbt.String(strings.Repeat("x", math.MaxUint16+1))
	require.Error(t, nbt.NewEncoder(&buf).Encode(oversized, ""))
}

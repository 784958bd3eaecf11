package nbt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/astei/nbt"
)

func TestSNBTCycle(t *testing.T) {
	tree := bigTree(t)
	// The text form carries no element type for an empty list, so an
	// End-typed empty list comes back as an Int-typed one.
	tree.Delete("listTest (empty)")

	parsed, err := nbt.ParseSNBT(nbt.ToSNBT(tree))
	require.NoError(t, err)
	require.True(t, nbt.Equal(tree, parsed), "snbt cycle lost data")
}

func TestToSNBT(t *testing.T) {
	require.Equal(t, "123b", nbt.ToSNBT(nbt.Byte(123)))
	require.Equal(t, "-12345s", nbt.ToSNBT(nbt.Short(-12345)))
	require.Equal(t, "7", nbt.ToSNBT(nbt.Int(7)))
	require.Equal(t, "123456789012l", nbt.ToSNBT(nbt.Long(123456789012)))
	require.Equal(t, "0.5f", nbt.ToSNBT(nbt.Float(0.5)))
	require.Equal(t, "0.5d", nbt.ToSNBT(nbt.Double(0.5)))
	require.Equal(t, `"hi there"`, nbt.ToSNBT(nbt.String("hi there")))
	require.Equal(t, `[B;1b,-2b]`, nbt.ToSNBT(nbt.ByteArray{1, -2}))
	require.Equal(t, `[I;1,-2]`, nbt.ToSNBT(nbt.IntArray{1, -2}))
	require.Equal(t, `[L;1l,-2l]`, nbt.ToSNBT(nbt.LongArray{1, -2}))
	require.Equal(t, `[1,2]`, nbt.ToSNBT(mustList(t, nbt.TypeInt, nbt.Int(1), nbt.Int(2))))
	require.Equal(t, `{three:"3","big key":{}}`,
		nbt.ToSNBT(compoundOf("three", nbt.String("3"), "big key", nbt.NewCompound())))
}

func TestParseSNBT(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want nbt.Tag
	}{
		{`123b`, nbt.Byte(123)},
		{`-12345s`, nbt.Short(-12345)},
		{`+123456789`, nbt.Int(123456789)},
		{`123456789012l`, nbt.Long(123456789012)},
		{`12.34f`, nbt.Float(12.34)},
		{`12.34d`, nbt.Double(12.34)},
		{`-12.34`, nbt.Double(-12.34)},
		{`false`, nbt.Byte(0)},
		{`true`, nbt.Byte(1)},
		{`'simple:string!'`, nbt.String("simple:string!")},
		{`"a bc \'def\' ghi "`, nbt.String("a bc 'def' ghi ")},
		{`"escaping test \" \\"`, nbt.String(`escaping test " \`)},
		{`[L; 1l, -2l, 3l]`, nbt.LongArray{1, -2, 3}},
		{`[B;]`, nbt.ByteArray{}},
		{`{}`, nbt.NewCompound()},
		{`{three:"3"}`, compoundOf("three", nbt.String("3"))},
		{`{"big key":{}}`, compoundOf("big key", nbt.NewCompound())},
		{`{ spaces : 3 , everywhere : 7s }`,
			compoundOf("spaces", nbt.Int(3), "everywhere", nbt.Short(7))},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := nbt.ParseSNBT(tc.in)
			require.NoError(t, err)
			require.True(t, nbt.Equal(tc.want, got), "parsed %#v", got)
		})
	}
}

func TestParseSNBTNestedLists(t *testing.T) {
	got, err := nbt.ParseSNBT(` [ [ 1 ], [ -2 ] ] `)
	require.NoError(t, err)

	want := mustList(t, nbt.TypeList,
		mustList(t, nbt.TypeInt, nbt.Int(1)),
		mustList(t, nbt.TypeInt, nbt.Int(-2)))
	require.True(t, nbt.Equal(want, got))
}

func TestParseSNBTStringList(t *testing.T) {
	got, err := nbt.ParseSNBT(`["parse multiple", " quoted ", "strings"]`)
	require.NoError(t, err)

	want := mustList(t, nbt.TypeString,
		nbt.String("parse multiple"), nbt.String(" quoted "), nbt.String("strings"))
	require.True(t, nbt.Equal(want, got))
}

func TestParseSNBTErrors(t *testing.T) {
	for _, in := range []string{
		``,
		`123 "and more"`,
		`"unclosed string`,
		`"bad quote\"`,
		`[[],[]`,
		`[1,2,]`,
		`[?;1,2,3]`,
		`[I;1,2b]`,
		`[I;1,"not an int"]`,
		`{`,
		`{bad key:"value"}`,
		`{:"value"}`,
		`{key:1,nocolon}`,
		`{key:1,noval:}`,
		`129b`,
	} {
		t.Run(in, func(t *testing.T) {
			_, err := nbt.ParseSNBT(in)
			require.ErrorIs(t, err, nbt.ErrInvalidSNBT)
		})
	}
}

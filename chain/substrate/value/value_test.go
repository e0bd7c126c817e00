package value_test

import (
	"encoding/hex"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/cordialsys/xcall/chain/substrate/registry"
	"github.com/cordialsys/xcall/chain/substrate/value"
	"github.com/cordialsys/xcall/testutil"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	require := require.New(t)

	values, err := value.Parse(`Some(Foo(1, true)), [a, b], "x, \"y\"", 5Grwva, (1, 2), hello world, Bar()`)
	require.NoError(err)
	require.Len(values, 7)
	require.Equal(value.Named, values[0].Kind)
	require.Equal("Some", values[0].Text)
	require.Equal(value.Named, values[0].Items[0].Kind)
	require.Len(values[0].Items[0].Items, 2)
	require.Equal(value.List, values[1].Kind)
	require.Equal(value.Quoted, values[2].Kind)
	require.Equal(`x, "y"`, values[2].Text)
	require.Equal(value.Scalar, values[3].Kind)
	require.Equal(value.Group, values[4].Kind)
	require.Equal("hello world", values[5].Text)
	require.Empty(values[6].Items)

	require.Equal(`Some(Foo(1, true)), [a, b], "x, \"y\"", 5Grwva, (1, 2), hello world, Bar()`, value.Join(values))

	empty, err := value.Parse("  ")
	require.NoError(err)
	require.Empty(empty)

	for _, invalid := range []string{"Some(1", "[1, 2", `"abc`, "1,,2", "(1))", ","} {
		_, err := value.Parse(invalid)
		require.Error(err, invalid)
	}
}

func devEncoder(t *testing.T) (*value.Encoder, *value.Decoder) {
	reg, err := registry.New(testutil.DevMetadata())
	require.NoError(t, err)
	return value.NewEncoder(reg.Lookup()), value.NewDecoder(reg.Lookup())
}

func TestEncode(t *testing.T) {
	encoder, _ := devEncoder(t)
	alice := testutil.AlicePublicKey
	bob := testutil.BobPublicKey

	type testcase struct {
		name     string
		typeID   int64
		text     string
		expected string
	}
	vectors := []testcase{
		{"multiaddress from ss58", testutil.TypeMultiAddress, testutil.Alice, "00" + alice},
		{"multiaddress explicit", testutil.TypeMultiAddress, "Id(" + testutil.Alice + ")", "00" + alice},
		{"multiaddress from hex", testutil.TypeMultiAddress, "Id(0x" + alice + ")", "00" + alice},
		{"multiaddress raw", testutil.TypeMultiAddress, "Raw(0x0102)", "02080102"},
		{"compact", testutil.TypeCompactU128, "1000", "a10f"},
		{"compact scientific", testutil.TypeCompactU128, "1e12", "070010a5d4e8"},
		{"compact hex", testutil.TypeCompactU128, "0x10", "40"},
		{"account id", testutil.TypeAccountId32, testutil.Alice, alice},
		{"option none", testutil.TypeOptionTimepoint, "None", "00"},
		{"option some flattened", testutil.TypeOptionTimepoint, "Some(10, 2)", "010a00000002000000"},
		{"option some grouped", testutil.TypeOptionTimepoint, "Some((10, 2))", "010a00000002000000"},
		{"option implicit some", testutil.TypeOptionTimepoint, "(10, 2)", "010a00000002000000"},
		{"composite flattened", testutil.TypeWeight, "1000, 2000", "a10f411f"},
		{"composite grouped", testutil.TypeWeight, "(1000, 2000)", "a10f411f"},
		{"variant without fields", testutil.TypeRewardDest, "Staked", "00"},
		{"variant with fields", testutil.TypeRewardDest, "Account(" + testutil.Bob + ")", "03" + bob},
		{"variant named None", testutil.TypeRewardDest, "None", "04"},
		{"vec of accounts", 15, "[" + testutil.Alice + ", " + testutil.Bob + "]", "08" + alice + bob},
		{"empty vec", 15, "[]", "00"},
		{"bytes from hex", 8, "0x0102", "080102"},
		{"bytes from text", 8, "hello", "1468656c6c6f"},
		{"bytes from quoted text", 8, `"hi, there"`, "2468692c207468657265"},
		{"bool", 11, "true", "01"},
		{"u16", 14, "513", "0102"},
		{"u128", 4, "1", "01000000000000000000000000000000"},
		{"u64 underscores", 18, "1_000", "e803000000000000"},
	}
	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			require := require.New(t)
			bz, err := encoder.Encode(v.typeID, v.text)
			require.NoError(err)
			require.Equal(v.expected, hex.EncodeToString(bz))

			// encoding is pure
			again, err := encoder.Encode(v.typeID, v.text)
			require.NoError(err)
			require.Equal(bz, again)
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	encoder, _ := devEncoder(t)

	type testcase struct {
		name   string
		typeID int64
		text   string
		err    string
	}
	vectors := []testcase{
		{"not a number", testutil.TypeCompactU128, "abc", "invalid integer"},
		{"negative unsigned", testutil.TypeCompactU128, "-1", "out of range"},
		{"fraction", testutil.TypeCompactU128, "1.5", "not a whole number"},
		{"u16 overflow", 14, "65536", "out of range for u16"},
		{"trailing values", testutil.TypeCompactU128, "1, 2", "trailing"},
		{"missing field", testutil.TypeWeight, "1000", "missing value"},
		{"unknown alternative", testutil.TypeRewardDest, "Everywhere", "is not one of"},
		{"too many fields", testutil.TypeRewardDest, "Account(" + testutil.Alice + ", 1)", "too many values"},
		{"bad address", testutil.TypeAccountId32, "hello", "too short"},
		{"wrong hex length", testutil.TypeAccountId32, "0x0102", "expected 32 bytes"},
		{"bool", 11, "maybe", "invalid bool"},
		{"list for integer", 4, "[1]", "expected an integer"},
	}
	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			_, err := encoder.Encode(v.typeID, v.text)
			require.ErrorContains(t, err, v.err)
		})
	}
}

func TestDecode(t *testing.T) {
	require := require.New(t)
	encoder, decoder := devEncoder(t)

	text, err := decoder.Decode(testutil.TypeAccountInfo, make([]byte, 80))
	require.NoError(err)
	require.Equal("(0, 0, 0, 0, (0, 0, 0, 0))", text)

	for _, v := range []struct {
		typeID   int64
		input    string
		expected string
	}{
		{testutil.TypeOptionTimepoint, "Some(10, 2)", "Some((10, 2))"},
		{testutil.TypeOptionTimepoint, "None", "None"},
		{testutil.TypeMultiAddress, testutil.Alice, "Id(0x" + testutil.AlicePublicKey + ")"},
		{testutil.TypeRewardDest, "Staked", "Staked"},
		{testutil.TypeCompactU128, "1e12", "1000000000000"},
		{15, "[" + testutil.Alice + "]", "[0x" + testutil.AlicePublicKey + "]"},
	} {
		bz, err := encoder.Encode(v.typeID, v.input)
		require.NoError(err)
		text, err := decoder.Decode(v.typeID, bz)
		require.NoError(err)
		require.Equal(v.expected, text)

		// decoded text encodes back to the same bytes
		again, err := encoder.Encode(v.typeID, text)
		require.NoError(err)
		require.Equal(bz, again)
	}

	_, err = decoder.Decode(testutil.TypeCompactU128, []byte{0x04, 0x00})
	require.ErrorContains(err, "trailing bytes")
}

func TestDecodeErrors(t *testing.T) {
	b := testutil.NewMetadataBuilder()
	u8 := b.Primitive(types.IsU8)
	u32 := b.Primitive(types.IsU32)
	str := b.Primitive(types.IsStr)
	bytes := b.Sequence(u8)
	numbers := b.Sequence(u32)
	bits := b.Add(types.Si1Type{
		Def: types.Si1TypeDef{
			IsBitSequence: true,
			BitSequence: types.Si1TypeDefBitSequence{
				BitStoreType: types.NewSi1LookupTypeIDFromUInt(uint64(u8)),
				BitOrderType: types.NewSi1LookupTypeIDFromUInt(uint64(u8)),
			},
		},
	})
	meta := b.Build(nil)
	decoder := value.NewDecoder(registry.NewLookup(&meta.AsMetadataV14))

	// compact lengths: 2^64-1 (big integer mode), 2^62 and 100 (two byte mode)
	huge := testutil.FromHex("13ffffffffffffffff")
	beyondInt64 := testutil.FromHex("17ffffffffffffffffff")
	hundred := testutil.FromHex("9101")

	type testcase struct {
		name   string
		typeID int64
		data   []byte
		err    string
	}
	vectors := []testcase{
		{"bytes of 2^64-1", bytes, huge, "exceeds"},
		{"str of 2^64-1", str, huge, "exceeds"},
		{"bits of 2^64-1", bits, huge, "exceeds"},
		{"numbers of 2^64-1", numbers, huge, "exceeds"},
		{"length beyond int64", bytes, beyondInt64, "exceeds"},
		{"bytes longer than input", bytes, append(hundred, 1, 2, 3), "exceeds"},
		{"str longer than input", str, append(hundred, 'a'), "exceeds"},
		{"bits longer than input", bits, append(testutil.FromHex("a106"), 0xff), "exceeds"},
		{"short numbers", numbers, testutil.FromHex("080100000002"), "Cannot read the required number of bytes"},
	}
	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			require := require.New(t)
			var err error
			require.NotPanics(func() {
				_, err = decoder.Decode(v.typeID, v.data)
			})
			require.ErrorContains(err, v.err)
		})
	}

	text, err := decoder.Decode(bytes, testutil.FromHex("0c010203"))
	require.NoError(t, err)
	require.Equal(t, "0x010203", text)
	text, err = decoder.Decode(str, testutil.FromHex("0c616263"))
	require.NoError(t, err)
	require.Equal(t, `"abc"`, text)
	text, err = decoder.Decode(bits, testutil.FromHex("0c05"))
	require.NoError(t, err)
	require.Equal(t, "0b101", text)
}

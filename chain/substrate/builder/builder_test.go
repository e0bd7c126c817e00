package builder_test

import (
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/cordialsys/xcall/chain/substrate/builder"
	"github.com/cordialsys/xcall/chain/substrate/registry"
	xcerrors "github.com/cordialsys/xcall/client/errors"
	"github.com/cordialsys/xcall/testutil"
	"github.com/stretchr/testify/require"
)

func newBuilder(t *testing.T) *builder.CallBuilder {
	reg, err := registry.New(testutil.DevMetadata())
	require.NoError(t, err)
	return builder.NewCallBuilder(reg)
}

func TestBuildTransfer(t *testing.T) {
	require := require.New(t)
	call, err := newBuilder(t).Build("Balances", "transfer", []string{testutil.Alice, "1000"})
	require.NoError(err)

	// pallet 5, call 0, MultiAddress::Id, account, compact 1000
	expected := "0x0500" + "00" + testutil.AlicePublicKey + "a10f"
	require.Equal(expected, call.CallData())
	bz, err := call.Encode()
	require.NoError(err)
	require.Equal(expected, codec.HexEncodeToString(bz))
	require.Equal("Balances.transfer("+testutil.Alice+", 1000)", call.String())
	require.EqualValues(5, call.Call().CallIndex.SectionIndex)
}

func TestBuildIsPure(t *testing.T) {
	require := require.New(t)
	b := newBuilder(t)
	args := []string{"Id(" + testutil.Bob + ")", "1_000_000"}
	first, err := b.Build("Balances", "transfer_keep_alive", args)
	require.NoError(err)
	second, err := b.Build("Balances", "transfer_keep_alive", args)
	require.NoError(err)
	require.Equal(first.CallData(), second.CallData())
	require.Equal("0x0503", first.CallData()[:6])
}

func TestBuildVectors(t *testing.T) {
	vectors := []struct {
		pallet    string
		extrinsic string
		args      []string
		callData  string
	}{
		{"System", "remark", []string{"0x0102"}, "0x0000" + "08" + "0102"},
		{"System", "remark", []string{"hey"}, "0x0000" + "0c" + "686579"},
		{"Balances", "transfer_all", []string{testutil.Bob, "true"}, "0x0504" + "00" + testutil.BobPublicKey + "01"},
		{"Staking", "bond", []string{"1", "Staked"}, "0x0700" + "04" + "00"},
		{"Staking", "bond", []string{"1", "Account(" + testutil.Alice + ")"}, "0x0700" + "04" + "03" + testutil.AlicePublicKey},
		{
			"Multisig", "approve_as_multi",
			[]string{"2", "[" + testutil.Bob + "]", "None", "0x" + testutil.AlicePublicKey, "(1000, 2000)"},
			"0x1e02" + "0200" + "04" + testutil.BobPublicKey + "00" + testutil.AlicePublicKey + "a10f" + "411f",
		},
		{
			"Multisig", "approve_as_multi",
			[]string{"2", "[]", "Some(7, 1)", "0x" + testutil.AlicePublicKey, "1000, 2000"},
			"0x1e02" + "0200" + "00" + "01" + "07000000" + "01000000" + testutil.AlicePublicKey + "a10f" + "411f",
		},
	}
	for _, v := range vectors {
		t.Run(v.pallet+"."+v.extrinsic, func(t *testing.T) {
			require := require.New(t)
			call, err := newBuilder(t).Build(v.pallet, v.extrinsic, v.args)
			require.NoError(err)
			require.Equal(v.callData, call.CallData())
		})
	}
}

func TestArgumentCountMismatch(t *testing.T) {
	require := require.New(t)
	call, err := newBuilder(t).Build("Balances", "transfer", []string{testutil.Alice, "1000", "extra"})
	require.Nil(call)
	require.Equal(xcerrors.ArgumentCountMismatchError, xcerrors.StatusOf(err))
	require.ErrorContains(err, "expects 2 argument(s), got 3")
}

func TestEncodingErrorNamesArgument(t *testing.T) {
	require := require.New(t)
	_, err := newBuilder(t).Build("Balances", "transfer", []string{testutil.Alice, "-5"})
	require.Equal(xcerrors.EncodingError, xcerrors.StatusOf(err))
	require.ErrorContains(err, "Balances.transfer argument 1 (value)")

	_, err = newBuilder(t).Build("Balances", "transfer", []string{"Nope(1)", "5"})
	require.Equal(xcerrors.EncodingError, xcerrors.StatusOf(err))
	require.ErrorContains(err, "argument 0 (dest)")
}

func TestUnknownNames(t *testing.T) {
	require := require.New(t)
	_, err := newBuilder(t).Build("Nope", "transfer", nil)
	require.Equal(xcerrors.UnknownPalletError, xcerrors.StatusOf(err))
	_, err = newBuilder(t).Build("Balances", "nope", nil)
	require.Equal(xcerrors.UnknownExtrinsicError, xcerrors.StatusOf(err))
}

func TestStorageQuery(t *testing.T) {
	require := require.New(t)
	b := newBuilder(t)

	query, err := b.BuildStorageQuery("System", "Account", []string{testutil.Alice})
	require.NoError(err)
	require.Equal(
		"0x26aa394eea5630e07c48ae0c9558cef7b99d880ec681799c0cf30e8886371da9"+
			"de1e86a9a8c739864cf3cc5ec2bea59f"+testutil.AlicePublicKey,
		query.Key.Hex(),
	)
	require.Equal(testutil.TypeAccountInfo, query.ValueType)
	require.Len(query.Fallback, 80)
	require.Equal("System.Account("+testutil.Alice+")", query.String())

	query, err = b.BuildStorageQuery("System", "Number", nil)
	require.NoError(err)
	require.Equal("0x26aa394eea5630e07c48ae0c9558cef702a5c1b19ab7a04f536c519aca4983ac", query.Key.Hex())

	_, err = b.BuildStorageQuery("System", "Number", []string{"1"})
	require.Equal(xcerrors.ArgumentCountMismatchError, xcerrors.StatusOf(err))
	_, err = b.BuildStorageQuery("System", "Nope", nil)
	require.Equal(xcerrors.UnknownStorageError, xcerrors.StatusOf(err))
}

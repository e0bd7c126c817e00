package selector_test

import (
	"testing"

	"github.com/cordialsys/xcall/chain/substrate/registry"
	"github.com/cordialsys/xcall/chain/substrate/selector"
	xcerrors "github.com/cordialsys/xcall/client/errors"
	"github.com/cordialsys/xcall/testutil"
	"github.com/stretchr/testify/require"
)

func devRegistry(t *testing.T) *registry.Registry {
	reg, err := registry.New(testutil.DevMetadata())
	require.NoError(t, err)
	return reg
}

func TestSuppliedNamesAreNotPrompted(t *testing.T) {
	require := require.New(t)
	source := testutil.NewScriptedSource()
	selection, err := selector.New(devRegistry(t), source).Select(selector.Request{Pallet: "Balances", Extrinsic: "transfer"})
	require.NoError(err)
	require.Equal("Balances", selection.Pallet.Name)
	require.Equal("transfer", selection.Name())
	require.False(selection.IsQuery())
	require.Len(selection.Args(), 2)
	require.Empty(source.Prompts)

	selection, err = selector.New(devRegistry(t), source).Select(selector.Request{Pallet: "System", Storage: "Account"})
	require.NoError(err)
	require.True(selection.IsQuery())
	require.Len(selection.Args(), 1)
	require.Empty(source.Prompts)
}

func TestUnknownNames(t *testing.T) {
	require := require.New(t)
	reg := devRegistry(t)
	source := testutil.NewScriptedSource()

	_, err := selector.New(reg, source).Select(selector.Request{Pallet: "Nope", Extrinsic: "transfer"})
	require.Equal(xcerrors.UnknownPalletError, xcerrors.StatusOf(err))

	_, err = selector.New(reg, source).Select(selector.Request{Pallet: "Balances", Extrinsic: "nope"})
	require.Equal(xcerrors.UnknownExtrinsicError, xcerrors.StatusOf(err))

	_, err = selector.New(reg, source).Select(selector.Request{Pallet: "Balances", Storage: "nope"})
	require.Equal(xcerrors.UnknownStorageError, xcerrors.StatusOf(err))
	require.Empty(source.Prompts)
}

func TestOnlyMissingNameIsPrompted(t *testing.T) {
	require := require.New(t)
	source := testutil.NewScriptedSource(testutil.Choose("extrinsic:transfer_keep_alive"))
	selection, err := selector.New(devRegistry(t), source).Select(selector.Request{Pallet: "Balances"})
	require.NoError(err)
	require.Equal("transfer_keep_alive", selection.Extrinsic.Name)
	require.Equal([]string{"Select the extrinsic to call:"}, source.Prompts)

	labels := []string{}
	for _, choice := range source.Choices[0] {
		labels = append(labels, choice.Label)
	}
	require.Equal([]string{"transfer", "transfer_keep_alive", "transfer_all"}, labels)
	require.Equal("Transfer some liquid free balance to another account.", source.Choices[0][0].Hint)
}

func TestInteractiveSelection(t *testing.T) {
	require := require.New(t)
	source := testutil.NewScriptedSource(testutil.Choose("System"), testutil.Choose("storage:Number"))
	selection, err := selector.New(devRegistry(t), source).Select(selector.Request{})
	require.NoError(err)
	require.Equal("System", selection.Pallet.Name)
	require.True(selection.IsQuery())
	require.Equal("Number", selection.Name())
	require.Equal([]string{"Select the pallet to call:", "Select the extrinsic to call:"}, source.Prompts)

	pallets := []string{}
	for _, choice := range source.Choices[0] {
		pallets = append(pallets, choice.Value)
	}
	require.Equal([]string{"System", "Timestamp", "Balances", "Staking", "Multisig"}, pallets)
	require.Equal("Account (storage)", source.Choices[1][1].Label)
}

func TestSelectionCanceled(t *testing.T) {
	require := require.New(t)
	source := testutil.NewScriptedSource(testutil.Cancel())
	_, err := selector.New(devRegistry(t), source).Select(selector.Request{})
	require.Equal(xcerrors.Canceled, xcerrors.StatusOf(err))
}

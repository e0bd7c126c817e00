package client_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/cordialsys/xcall/chain/substrate/address"
	"github.com/cordialsys/xcall/chain/substrate/builder"
	"github.com/cordialsys/xcall/chain/substrate/client"
	"github.com/cordialsys/xcall/chain/substrate/client/api"
	"github.com/cordialsys/xcall/chain/substrate/signer"
	xcerrors "github.com/cordialsys/xcall/client/errors"
	"github.com/cordialsys/xcall/testutil"
	"github.com/stretchr/testify/require"
)

func accountInfo(nonce uint32, balance uint64) *api.AccountInfoMinimal {
	info := &api.AccountInfoMinimal{
		Nonce:     types.NewU32(nonce),
		Providers: types.NewU32(1),
	}
	info.Data.Free = types.NewU128(*new(big.Int).SetUint64(balance))
	return info
}

// responses of a development node
func devResponses() map[string][]string {
	return map[string][]string{
		"state_getMetadata":       {testutil.AsScaleRpcResult(testutil.DevMetadata())},
		"chain_getBlockHash":      {testutil.AsRpcResult(types.NewHash(make([]byte, 32)))},
		"state_getRuntimeVersion": {testutil.AsRpcResult(types.NewRuntimeVersion())},
		"chain_getHeader":         {testutil.AsRpcResult(&types.Header{Number: 1200})},
		"state_getStorage":        {testutil.AsScaleRpcResult(accountInfo(22, 100))},
		"author_submitExtrinsic":  {testutil.AsRpcResult("0x0ba1a1b4a8f6e4bd1d6f4b4f2f3b7b8a3c2e6c0ce6fb1d5fb4dcd0d1a8e1c3d4")},
	}
}

func connect(t *testing.T, responses map[string][]string) (*client.Client, *testutil.MockRPC) {
	rpc, close := testutil.MockJSONRPCMethods(t, responses)
	t.Cleanup(close)
	cli, err := client.NewClient(context.Background(), rpc.URL)
	require.NoError(t, err)
	return cli, rpc
}

func TestNewClientUnreachable(t *testing.T) {
	require := require.New(t)
	_, err := client.NewClient(context.Background(), "http://127.0.0.1:1")
	require.Equal(xcerrors.ConnectionError, xcerrors.StatusOf(err))
}

func TestFetchMetadata(t *testing.T) {
	require := require.New(t)
	cli, rpc := connect(t, devResponses())
	require.Equal(cli.URL()[:7], "http://")
	// connecting only reads the genesis hash
	require.Equal([]string{"chain_getBlockHash"}, rpc.Calls())

	reg, err := cli.FetchMetadata(context.Background())
	require.NoError(err)
	balances, err := reg.FindPallet("Balances")
	require.NoError(err)
	require.Len(balances.Extrinsics, 3)
	require.Equal(1, rpc.CallCount("state_getMetadata"))
}

func TestRequestsHonorContext(t *testing.T) {
	for _, method := range []string{"state_getMetadata", "state_getRuntimeVersion", "chain_getHeader", "state_getStorage"} {
		t.Run(method, func(t *testing.T) {
			require := require.New(t)
			cli, rpc := connect(t, devResponses())
			reg, err := cli.FetchMetadata(context.Background())
			require.NoError(err)
			rpc.Stall(method)

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			start := time.Now()
			if method == "state_getMetadata" {
				_, err = cli.FetchMetadata(ctx)
				require.Equal(xcerrors.MetadataFetchError, xcerrors.StatusOf(err))
			} else {
				_, err = cli.FetchTxInput(ctx, reg, address.Address(testutil.Alice))
			}
			require.Error(err)
			require.Less(time.Since(start), 2*time.Second)
		})
	}
}

func TestNewClientHonorsContext(t *testing.T) {
	require := require.New(t)
	rpc, close := testutil.MockJSONRPCMethods(t, devResponses())
	t.Cleanup(close)
	rpc.Stall("chain_getBlockHash")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := client.NewClient(ctx, rpc.URL)
	require.Equal(xcerrors.ConnectionError, xcerrors.StatusOf(err))
	require.Less(time.Since(start), 2*time.Second)
}

func TestFetchMetadataError(t *testing.T) {
	require := require.New(t)
	responses := devResponses()
	responses["state_getMetadata"] = []string{
		testutil.AsRpcError(-32000, "metadata unavailable", "busy"),
	}
	cli, _ := connect(t, responses)
	_, err := cli.FetchMetadata(context.Background())
	require.Equal(xcerrors.MetadataFetchError, xcerrors.StatusOf(err))
	require.ErrorContains(err, "metadata unavailable: busy")
}

func TestFetchTxInput(t *testing.T) {
	require := require.New(t)
	cli, _ := connect(t, devResponses())
	reg, err := cli.FetchMetadata(context.Background())
	require.NoError(err)

	input, err := cli.FetchTxInput(context.Background(), reg, address.Address(testutil.Alice))
	require.NoError(err)
	require.EqualValues(22, input.Nonce)
	require.EqualValues(1200, input.CurrentHeight)
	require.Len(input.Meta.SignedExtensions, 8)
}

func TestSignAndSubmit(t *testing.T) {
	require := require.New(t)
	cli, rpc := connect(t, devResponses())
	reg, err := cli.FetchMetadata(context.Background())
	require.NoError(err)
	call, err := builder.NewCallBuilder(reg).Build("Balances", "transfer", []string{testutil.Bob, "1000"})
	require.NoError(err)
	alice, err := signer.New("//Alice", address.DefaultPrefix)
	require.NoError(err)

	receipt, err := cli.SignAndSubmit(context.Background(), reg, call, alice, 0)
	require.NoError(err)
	require.Equal("0x0ba1a1b4a8f6e4bd1d6f4b4f2f3b7b8a3c2e6c0ce6fb1d5fb4dcd0d1a8e1c3d4", receipt.Hash)
	require.Equal(call.CallData(), receipt.CallData.String())
	require.Equal("Balances.transfer("+testutil.Bob+", 1000)", receipt.Call)
	require.Equal(1, rpc.CallCount("author_submitExtrinsic"))
}

func TestSubmitRejected(t *testing.T) {
	require := require.New(t)
	responses := devResponses()
	responses["author_submitExtrinsic"] = []string{testutil.AsRpcError(1010, "Invalid Transaction", "Inability to pay some fees")}
	cli, _ := connect(t, responses)
	reg, err := cli.FetchMetadata(context.Background())
	require.NoError(err)
	call, err := builder.NewCallBuilder(reg).Build("System", "remark", []string{"0x00"})
	require.NoError(err)
	alice, err := signer.New("//Alice", address.DefaultPrefix)
	require.NoError(err)

	_, err = cli.SignAndSubmit(context.Background(), reg, call, alice, 0)
	require.Equal(xcerrors.SubmissionError, xcerrors.StatusOf(err))
	require.ErrorContains(err, "Invalid Transaction: Inability to pay some fees (1010)")
}

func TestQueryStorage(t *testing.T) {
	require := require.New(t)
	responses := devResponses()
	responses["state_getStorage"] = []string{
		testutil.AsRpcResult("0xb0040000"),
		`{"jsonrpc":"2.0","result":null,"id":1}`,
	}
	cli, _ := connect(t, responses)
	reg, err := cli.FetchMetadata(context.Background())
	require.NoError(err)
	query, err := builder.NewCallBuilder(reg).BuildStorageQuery("System", "Number", nil)
	require.NoError(err)

	value, err := cli.QueryStorage(context.Background(), query)
	require.NoError(err)
	require.Equal([]byte{0xb0, 0x04, 0, 0}, value)

	// absent values read as the default
	value, err = cli.QueryStorage(context.Background(), query)
	require.NoError(err)
	require.Equal(make([]byte, 4), value)
}

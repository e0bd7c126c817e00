package call_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/cordialsys/xcall/call"
	"github.com/cordialsys/xcall/chain/substrate/address"
	"github.com/cordialsys/xcall/chain/substrate/builder"
	"github.com/cordialsys/xcall/chain/substrate/client"
	"github.com/cordialsys/xcall/chain/substrate/client/api"
	"github.com/cordialsys/xcall/chain/substrate/registry"
	"github.com/cordialsys/xcall/chain/substrate/resolver"
	"github.com/cordialsys/xcall/chain/substrate/signer"
	xcerrors "github.com/cordialsys/xcall/client/errors"
	"github.com/cordialsys/xcall/config"
	"github.com/cordialsys/xcall/testutil"
	"github.com/stretchr/testify/require"
)

const nodeURL = "ws://node.example:9944"

type fakeChain struct {
	url       string
	reg       *registry.Registry
	metaErr   error
	submitErr error
	storage   []byte

	submitted []*builder.Call
	signers   []address.Address
	queries   []*builder.StorageQuery
	closed    bool
}

func newFakeChain(t *testing.T) *fakeChain {
	reg, err := registry.New(testutil.DevMetadata())
	require.NoError(t, err)
	return &fakeChain{reg: reg}
}

func (c *fakeChain) URL() string {
	return c.url
}

func (c *fakeChain) FetchMetadata(ctx context.Context) (*registry.Registry, error) {
	if c.metaErr != nil {
		return nil, c.metaErr
	}
	return c.reg, nil
}

func (c *fakeChain) SignAndSubmit(ctx context.Context, reg *registry.Registry, call *builder.Call, s *signer.Signer, tip uint64) (*client.Receipt, error) {
	if c.submitErr != nil {
		return nil, c.submitErr
	}
	c.submitted = append(c.submitted, call)
	c.signers = append(c.signers, s.Address)
	return &client.Receipt{
		Hash:     fmt.Sprintf("0x%064x", len(c.submitted)),
		CallData: call.Bytes(),
		Call:     call.String(),
	}, nil
}

func (c *fakeChain) QueryStorage(ctx context.Context, query *builder.StorageQuery) ([]byte, error) {
	c.queries = append(c.queries, query)
	if c.storage == nil {
		return query.Fallback, nil
	}
	return c.storage, nil
}

func (c *fakeChain) Close() {
	c.closed = true
}

type recordedOutput struct {
	intros  []string
	infos   []string
	outros  []string
	cancels []string
}

func (o *recordedOutput) Intro(title string)         { o.intros = append(o.intros, title) }
func (o *recordedOutput) Info(message string)        { o.infos = append(o.infos, message) }
func (o *recordedOutput) Outro(message string)       { o.outros = append(o.outros, message) }
func (o *recordedOutput) OutroCancel(message string) { o.cancels = append(o.cancels, message) }

type harness struct {
	chain      *fakeChain
	output     *recordedOutput
	controller *call.Controller
	connected  []string
}

func newHarness(t *testing.T, source resolver.Source) *harness {
	h := &harness{
		chain:  newFakeChain(t),
		output: &recordedOutput{},
	}
	connect := func(ctx context.Context, url string) (call.Chain, error) {
		h.connected = append(h.connected, url)
		h.chain.url = url
		return h.chain, nil
	}
	h.controller = call.NewController(source, h.output, connect, call.NewKeyring(address.DefaultPrefix))
	return h
}

func TestSubmitSuppliedCall(t *testing.T) {
	require := require.New(t)
	source := testutil.NewScriptedSource(testutil.Yes())
	h := newHarness(t, source)

	result := h.controller.RunCallSession(context.Background(), call.Request{
		Pallet:    "Balances",
		Extrinsic: "transfer",
		Args:      []string{testutil.Alice, "1000"},
		URL:       nodeURL,
		Suri:      "//Alice",
	})
	require.Equal(call.ResultSubmitted, result.Kind, result.String())
	require.NoError(result.Err())
	require.NotEmpty(result.Session)
	require.Equal([]string{"Do you want to submit the call?"}, source.Prompts)
	require.True(source.Done())

	require.Len(h.chain.submitted, 1)
	receipt := result.Receipt()
	require.Equal("0x050000"+testutil.AlicePublicKey+"a10f", receipt.CallData.String())
	require.Equal("Balances.transfer("+testutil.Alice+", 1000)", receipt.Call)
	require.Equal("Balances", receipt.Pallet)
	require.Equal("transfer", receipt.Operation)
	require.Equal(address.Address(testutil.Alice), receipt.Signer)
	require.NotEmpty(receipt.Hash)

	bz, err := json.Marshal(receipt)
	require.NoError(err)
	require.Contains(string(bz), `"call_data":"0x050000`+testutil.AlicePublicKey+`a10f"`)

	require.Equal([]string{"Call a parachain"}, h.output.intros)
	require.Equal([]string{"Call completed successfully!"}, h.output.outros)
	require.Contains(h.output.infos, "Encoded call data: 0x050000"+testutil.AlicePublicKey+"a10f")
	require.Contains(h.output.infos, `xc call parachain --pallet Balances --extrinsic transfer --args "`+testutil.Alice+`", "1000" --url `+nodeURL+` --suri //Alice`)
	require.Contains(h.output.infos, "Extrinsic submitted with hash: "+receipt.Hash)

	require.Equal([]call.State{
		call.Idle,
		call.Configuring,
		call.Prepared,
		call.AwaitingConfirmation,
		call.Signing,
		call.Submitted,
		call.Done,
	}, h.controller.History())
	require.True(h.controller.State().Terminal())
	require.True(h.chain.closed)
}

func TestDeclinedCallIsNotSubmitted(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, testutil.NewScriptedSource(testutil.No()))

	result := h.controller.RunCallSession(context.Background(), call.Request{
		Pallet:    "Balances",
		Extrinsic: "transfer",
		Args:      []string{testutil.Bob, "1000"},
		URL:       nodeURL,
		Suri:      "//Alice",
	})
	require.Equal(call.ResultCanceled, result.Kind)
	require.Equal("Extrinsic transfer was not submitted. Operation canceled by the user.", result.Reason)
	require.Equal([]string{result.Reason}, h.output.cancels)
	require.Empty(h.output.outros)
	require.Empty(h.chain.submitted)
	require.Nil(result.Receipt())
	require.Equal(call.Canceled, h.controller.State())
	require.Equal(xcerrors.Canceled, xcerrors.StatusOf(result.Err()))
}

func TestSignerKeptAcrossRepeatedCalls(t *testing.T) {
	require := require.New(t)
	source := testutil.NewScriptedSource(
		testutil.Choose("System"),
		testutil.Choose("extrinsic:remark"),
		testutil.Text("0x00"),
		testutil.Text("//Bob"),
		testutil.Yes(),
		testutil.Yes(),
		testutil.Choose("Balances"),
		testutil.Choose("extrinsic:transfer_all"),
		testutil.Choose("Id"),
		testutil.Text(testutil.Alice),
		testutil.Text("true"),
		testutil.Yes(),
		testutil.No(),
	)
	h := newHarness(t, source)

	result := h.controller.RunCallSession(context.Background(), call.Request{URL: nodeURL})
	require.Equal(call.ResultSubmitted, result.Kind, result.String())
	require.True(source.Done())
	require.Len(result.Receipts, 2)
	require.Equal(address.Address(testutil.Bob), result.Receipts[0].Signer)
	require.Equal(address.Address(testutil.Bob), result.Receipts[1].Signer)
	require.Equal([]address.Address{testutil.Bob, testutil.Bob}, h.chain.signers)

	require.Equal("Balances.transfer_all(Id("+testutil.Alice+"), true)", result.Receipts[1].Call)
	require.Len(filter(source.Prompts, "Who is going to sign the extrinsic:"), 1)
	require.Len(filter(source.Prompts, "Do you want to perform another call to the same chain?"), 2)

	// one connection serves the whole session
	require.Equal([]string{nodeURL}, h.connected)
	require.Equal([]string{"Parachain calling complete."}, h.output.outros)
	require.Equal(call.Done, h.controller.State())
	require.Contains(h.controller.History(), call.RepeatPrompt)
}

func filter(prompts []string, label string) []string {
	matched := []string{}
	for _, prompt := range prompts {
		if prompt == label {
			matched = append(matched, prompt)
		}
	}
	return matched
}

func TestDefaultURLIsPrompted(t *testing.T) {
	require := require.New(t)
	source := testutil.NewScriptedSource(testutil.Text("wss://rpc.example.org"), testutil.Yes())
	h := newHarness(t, source)

	result := h.controller.RunCallSession(context.Background(), call.Request{
		Pallet:    "System",
		Extrinsic: "remark",
		Args:      []string{"0x01"},
		URL:       config.DefaultURL,
		Suri:      "//Alice",
	})
	require.Equal(call.ResultSubmitted, result.Kind, result.String())
	require.Equal("Which chain would you like to interact with?", source.Prompts[0])
	require.Equal(config.SuggestedURL, source.Placeholders[0])
	require.Equal([]string{"wss://rpc.example.org"}, h.connected)
}

func TestNonInteractive(t *testing.T) {
	require := require.New(t)

	// confirmation cannot be asked for
	h := newHarness(t, resolver.NewFragments())
	result := h.controller.RunCallSession(context.Background(), call.Request{
		Pallet:    "System",
		Extrinsic: "remark",
		Args:      []string{"0x01"},
		URL:       config.DefaultURL,
	})
	require.Equal(call.ResultCanceled, result.Kind)
	require.Empty(h.chain.submitted)
	require.Equal([]string{config.DefaultURL}, h.connected)

	// skipping it submits with the default signer
	h = newHarness(t, resolver.NewFragments())
	result = h.controller.RunCallSession(context.Background(), call.Request{
		Pallet:      "System",
		Extrinsic:   "remark",
		Args:        []string{"0x01"},
		URL:         nodeURL,
		SkipConfirm: true,
	})
	require.Equal(call.ResultSubmitted, result.Kind, result.String())
	require.Equal(address.Address(testutil.Alice), result.Receipt().Signer)
	require.Contains(h.output.infos, `xc call parachain --pallet System --extrinsic remark --args "0x01" --url `+nodeURL+` --suri `+config.DefaultSuri)
}

func TestStorageQuery(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, testutil.NewScriptedSource())
	h.chain.storage = []byte{0xb0, 0x04, 0, 0}

	result := h.controller.RunCallSession(context.Background(), call.Request{
		Pallet:  "System",
		Storage: "Number",
		URL:     nodeURL,
	})
	require.Equal(call.ResultSubmitted, result.Kind, result.String())
	require.Empty(h.chain.submitted)
	require.Len(h.chain.queries, 1)

	receipt := result.Receipt()
	require.True(receipt.Query)
	require.Equal("1200", receipt.Value)
	require.Equal("Number", receipt.Operation)
	require.Empty(receipt.Hash)
	require.Contains(h.output.infos, "xc call parachain --pallet System --storage Number --url "+nodeURL)
	require.Contains(h.output.infos, "Storage key: 0x26aa394eea5630e07c48ae0c9558cef702a5c1b19ab7a04f536c519aca4983ac")
	require.NotContains(h.controller.History(), call.AwaitingConfirmation)
}

func TestSurplusArgumentsFailArity(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, testutil.NewScriptedSource())

	result := h.controller.RunCallSession(context.Background(), call.Request{
		Pallet:    "Balances",
		Extrinsic: "transfer",
		Args:      []string{testutil.Bob, "1000", "extra"},
		URL:       nodeURL,
		Suri:      "//Alice",
	})
	require.Equal(call.ResultFailed, result.Kind)
	require.Equal(xcerrors.ArgumentCountMismatchError, result.ErrorKind)
	require.Contains(result.Message, "Balances.transfer expects 2 argument(s), got 3")
	require.Empty(h.chain.submitted)
	require.Len(h.output.cancels, 1)
}

func TestFailureKinds(t *testing.T) {
	transfer := call.Request{
		Pallet:    "Balances",
		Extrinsic: "transfer",
		Args:      []string{testutil.Bob, "1000"},
		URL:       nodeURL,
		Suri:      "//Alice",
	}
	tests := []struct {
		name    string
		setup   func(h *harness)
		req     call.Request
		answers []testutil.Answer
		kind    xcerrors.Status
	}{
		{
			name:  "metadata",
			setup: func(h *harness) { h.chain.metaErr = fmt.Errorf("connection reset") },
			req:   transfer,
			kind:  xcerrors.MetadataFetchError,
		},
		{
			name: "pallet",
			req:  call.Request{Pallet: "Nope", Extrinsic: "transfer", URL: nodeURL},
			kind: xcerrors.UnknownPalletError,
		},
		{
			name: "extrinsic",
			req:  call.Request{Pallet: "Balances", Extrinsic: "nope", URL: nodeURL},
			kind: xcerrors.UnknownExtrinsicError,
		},
		{
			name: "encoding",
			req:  call.Request{Pallet: "Balances", Extrinsic: "transfer", Args: []string{testutil.Bob, "lots"}, URL: nodeURL},
			kind: xcerrors.EncodingError,
		},
		{
			name:    "submission",
			setup:   func(h *harness) { h.chain.submitErr = fmt.Errorf("Invalid Transaction (1010)") },
			req:     transfer,
			answers: []testutil.Answer{testutil.Yes()},
			kind:    xcerrors.SubmissionError,
		},
		{
			name:    "signer",
			req:     call.Request{Pallet: "System", Extrinsic: "remark", Args: []string{"0x00"}, URL: nodeURL, Suri: "not a uri"},
			answers: []testutil.Answer{},
			kind:    xcerrors.SubmissionError,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require := require.New(t)
			h := newHarness(t, testutil.NewScriptedSource(tc.answers...))
			if tc.setup != nil {
				tc.setup(h)
			}
			result := h.controller.RunCallSession(context.Background(), tc.req)
			require.Equal(call.ResultFailed, result.Kind)
			require.Equal(tc.kind, result.ErrorKind, result.Message)
			require.Equal(tc.kind, xcerrors.StatusOf(result.Err()))
			require.Empty(h.chain.submitted)
			require.Len(h.output.cancels, 1)
			require.False(h.controller.State().Terminal())
		})
	}
}

func TestInterruptedPromptCancels(t *testing.T) {
	require := require.New(t)
	h := newHarness(t, testutil.NewScriptedSource(testutil.Cancel()))
	result := h.controller.RunCallSession(context.Background(), call.Request{URL: nodeURL})
	require.Equal(call.ResultCanceled, result.Kind)
	require.Equal(call.Canceled, h.controller.State())
}

func TestSessionAgainstNode(t *testing.T) {
	require := require.New(t)
	info := &api.AccountInfoMinimal{Nonce: types.NewU32(3), Providers: types.NewU32(1)}
	info.Data.Free = types.NewU128(*new(big.Int).SetUint64(1_000_000))
	hash := "0x5e3c7f3ba0fbb1e5bd5b5f6c5b06d1f6a0c0e5b8a6a3bc2a8e9d22b9c1f6e1aa"
	rpc, close := testutil.MockJSONRPCMethods(t, map[string][]string{
		"state_getMetadata":       {testutil.AsScaleRpcResult(testutil.DevMetadata())},
		"chain_getBlockHash":      {testutil.AsRpcResult(types.NewHash(make([]byte, 32)))},
		"state_getRuntimeVersion": {testutil.AsRpcResult(types.NewRuntimeVersion())},
		"chain_getHeader":         {testutil.AsRpcResult(&types.Header{Number: 10})},
		"state_getStorage":        {testutil.AsScaleRpcResult(info)},
		"author_submitExtrinsic":  {testutil.AsRpcResult(hash)},
	})
	defer close()

	output := &recordedOutput{}
	controller := call.NewController(testutil.NewScriptedSource(), output, call.Connect, call.NewKeyring(address.DefaultPrefix))
	result := controller.RunCallSession(context.Background(), call.Request{
		Pallet:      "Balances",
		Extrinsic:   "transfer",
		Args:        []string{testutil.Alice, "1000"},
		URL:         rpc.URL,
		Suri:        "//Alice",
		SkipConfirm: true,
	})
	require.Equal(call.ResultSubmitted, result.Kind, result.String())
	require.Equal(hash, result.Receipt().Hash)
	require.Equal("0x050000"+testutil.AlicePublicKey+"a10f", result.Receipt().CallData.String())
	require.Equal(1, rpc.CallCount("author_submitExtrinsic"))
	// metadata is downloaded once per session
	require.Equal(1, rpc.CallCount("state_getMetadata"))
}

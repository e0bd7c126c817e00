package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gsclient "github.com/centrifuge/go-substrate-rpc-client/v4/client"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/cordialsys/xcall/chain/substrate/address"
	"github.com/cordialsys/xcall/chain/substrate/builder"
	"github.com/cordialsys/xcall/chain/substrate/client/api"
	"github.com/cordialsys/xcall/chain/substrate/registry"
	"github.com/cordialsys/xcall/chain/substrate/signer"
	"github.com/cordialsys/xcall/chain/substrate/tx"
	"github.com/cordialsys/xcall/chain/substrate/tx_input"
	xcerrors "github.com/cordialsys/xcall/client/errors"
	"github.com/cordialsys/xcall/pkg/hex"
	"github.com/sirupsen/logrus"
)

// Client is a live connection to one substrate node
type Client struct {
	rpc     gsclient.Client
	url     string
	genesis types.Hash
}

// Receipt of a submitted extrinsic
type Receipt struct {
	// as returned by the node
	Hash     string  `json:"hash"`
	CallData hex.Hex `json:"call_data"`
	Call     string  `json:"call"`
}

// NewClient connects to a node and reads its genesis hash, which confirms the node answers.
// Metadata is not read here, see FetchMetadata.
func NewClient(ctx context.Context, url string) (*Client, error) {
	logrus.WithField("url", url).Debug("connecting")
	type result struct {
		rpc gsclient.Client
		err error
	}
	done := make(chan result, 1)
	go func() {
		rpc, err := gsclient.Connect(url)
		done <- result{rpc, err}
	}()
	var rpc gsclient.Client
	select {
	case <-ctx.Done():
		// the dial gives up on its own timeout, close whatever it opens after that
		go func() {
			if late := <-done; late.err == nil {
				late.rpc.Close()
			}
		}()
		return nil, xcerrors.Connectionf(ctx.Err(), "could not connect to %s", url)
	case res := <-done:
		if res.err != nil {
			return nil, xcerrors.Connectionf(AsRpcErrorMaybe(res.err), "could not connect to %s", url)
		}
		rpc = res.rpc
	}

	client := &Client{rpc: rpc, url: url}
	genesis, err := client.fetchBlockHash(ctx, 0)
	if err != nil {
		rpc.Close()
		return nil, xcerrors.Connectionf(AsRpcErrorMaybe(err), "could not connect to %s", url)
	}
	client.genesis = genesis
	return client, nil
}

func (client *Client) URL() string {
	return client.url
}

func (client *Client) Close() {
	client.rpc.Close()
}

// FetchMetadata reads the latest runtime metadata and builds its registry
func (client *Client) FetchMetadata(ctx context.Context) (*registry.Registry, error) {
	var res string
	if err := client.rpc.CallContext(ctx, &res, "state_getMetadata"); err != nil {
		return nil, xcerrors.MetadataFetchf(AsRpcErrorMaybe(err), "could not fetch metadata from %s", client.url)
	}
	var meta types.Metadata
	if err := codec.DecodeFromHex(res, &meta); err != nil {
		return nil, xcerrors.MetadataFetchf(err, "invalid metadata from %s", client.url)
	}
	// gsrpc encodes some types differently depending on the runtime
	types.SetSerDeOptions(types.SerDeOptionsFromMetadata(&meta))

	reg, err := registry.New(&meta)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"url":     client.url,
		"pallets": len(reg.Pallets()),
	}).Debug("fetched metadata")
	return reg, nil
}

func (client *Client) fetchBlockHash(ctx context.Context, height uint64) (types.Hash, error) {
	var res string
	if err := client.rpc.CallContext(ctx, &res, "chain_getBlockHash", height); err != nil {
		return types.Hash{}, err
	}
	return types.NewHashFromHexString(res)
}

// FetchTxInputChain reads the chain state every transaction is signed against
func (client *Client) FetchTxInputChain(ctx context.Context, reg *registry.Registry) (*tx_input.TxInput, error) {
	txInput := tx_input.NewTxInput()
	var err error
	txInput.Meta, err = tx_input.ParseMeta(reg)
	if err != nil {
		return &tx_input.TxInput{}, err
	}
	txInput.GenesisHash = client.genesis

	var rv types.RuntimeVersion
	if err = client.rpc.CallContext(ctx, &rv, "state_getRuntimeVersion"); err != nil {
		return &tx_input.TxInput{}, err
	}
	txInput.Rv = rv

	var header types.Header
	if err = client.rpc.CallContext(ctx, &header, "chain_getHeader"); err != nil {
		return &tx_input.TxInput{}, err
	}
	txInput.CurrentHeight = uint64(header.Number)
	txInput.CurHash, err = client.fetchBlockHash(ctx, txInput.CurrentHeight)
	if err != nil {
		return &tx_input.TxInput{}, err
	}
	return txInput, nil
}

func (client *Client) FetchAccountNonce(ctx context.Context, reg *registry.Registry, from address.Address) (uint64, error) {
	account, err := address.DecodeBytes(from)
	if err != nil {
		return 0, err
	}
	storageKey, err := types.CreateStorageKey(reg.Metadata(), "System", "Account", account)
	if err != nil {
		return 0, err
	}
	var res *string
	if err = client.rpc.CallContext(ctx, &res, "state_getStorage", storageKey.Hex()); err != nil {
		return 0, err
	}
	// an account the chain has never seen
	if res == nil || *res == "" || *res == "0x" {
		return 0, nil
	}
	var accountInfo api.AccountInfoMinimal
	if err = codec.DecodeFromHex(*res, &accountInfo); err != nil {
		return 0, fmt.Errorf("invalid account info of %s: %w", from, err)
	}
	return uint64(accountInfo.Nonce), nil
}

// FetchTxInput returns the input for a transaction of the given sender
func (client *Client) FetchTxInput(ctx context.Context, reg *registry.Registry, from address.Address) (*tx_input.TxInput, error) {
	txInput, err := client.FetchTxInputChain(ctx, reg)
	if err != nil {
		return &tx_input.TxInput{}, err
	}
	txInput.Nonce, err = client.FetchAccountNonce(ctx, reg, from)
	if err != nil {
		return &tx_input.TxInput{}, err
	}
	return txInput, nil
}

// The current rpc client omits the .data in it's err.Error() method
func AsRpcErrorMaybe(inputError error) error {
	bz, err := json.Marshal(inputError)
	if err != nil {
		return inputError
	}
	var outputError api.RpcError
	err = json.Unmarshal(bz, &outputError)
	if err != nil {
		return inputError
	}
	if outputError.Code != 0 && len(outputError.Message) > 0 {
		if outputError.Data != nil {
			return fmt.Errorf("%s: %v (%d)", outputError.Message, outputError.Data, outputError.Code)
		} else {
			return fmt.Errorf("%s (%d)", outputError.Message, outputError.Code)
		}
	}
	return inputError
}

// SubmitTx submits a signed extrinsic and returns the hash reported by the node
func (client *Client) SubmitTx(ctx context.Context, transaction *tx.Tx) (string, error) {
	data, err := transaction.Serialize()
	if err != nil {
		return "", err
	}

	var res string
	encoded := codec.HexEncodeToString(data)
	logrus.WithField("tx", encoded).Debug("submitting tx")
	err = client.rpc.CallContext(ctx, &res, "author_submitExtrinsic", encoded)
	if err != nil {
		err = AsRpcErrorMaybe(err)
		if strings.Contains(strings.ToLower(err.Error()), "transaction already imported") {
			return "", fmt.Errorf("transaction %s already submitted: %w", transaction.Hash(), err)
		}
		return "", err
	}
	return res, nil
}

// SignAndSubmit signs an encoded call as the signer and submits it.
func (client *Client) SignAndSubmit(ctx context.Context, reg *registry.Registry, call *builder.Call, s *signer.Signer, tip uint64) (*Receipt, error) {
	log := logrus.WithFields(logrus.Fields{
		"url":       client.url,
		"pallet":    call.Pallet,
		"extrinsic": call.Extrinsic,
		"signer":    s.Address,
	})
	txInput, err := client.FetchTxInput(ctx, reg, s.Address)
	if err != nil {
		return nil, xcerrors.Submissionf(AsRpcErrorMaybe(err), "could not fetch transaction input")
	}
	txInput.Tip = tip
	sender, err := address.DecodeMulti(s.Address)
	if err != nil {
		return nil, xcerrors.Submissionf(err, "invalid signer")
	}
	transaction, err := tx.NewTx(call.Call(), sender, txInput)
	if err != nil {
		return nil, xcerrors.Submissionf(err, "could not build extrinsic")
	}
	sighash, err := transaction.Sighash()
	if err != nil {
		return nil, xcerrors.Submissionf(err, "could not encode signing payload")
	}
	signature, err := s.Sign(sighash)
	if err != nil {
		return nil, xcerrors.Submissionf(err, "could not sign")
	}
	if err = transaction.SetSignature(signature); err != nil {
		return nil, xcerrors.Submissionf(err, "could not sign")
	}
	hash, err := client.SubmitTx(ctx, transaction)
	if err != nil {
		return nil, xcerrors.Submissionf(err, "could not submit %s", call)
	}
	log.WithFields(logrus.Fields{
		"hash":  hash,
		"nonce": txInput.Nonce,
	}).Info("submitted")
	return &Receipt{
		Hash:     hash,
		CallData: call.Bytes(),
		Call:     call.String(),
	}, nil
}

// QueryStorage reads the raw value under a storage key, the entry's default when it is absent.
func (client *Client) QueryStorage(ctx context.Context, query *builder.StorageQuery) ([]byte, error) {
	var res *string
	err := client.rpc.CallContext(ctx, &res, "state_getStorage", query.Key.Hex())
	if err != nil {
		return nil, xcerrors.Submissionf(AsRpcErrorMaybe(err), "could not read %s", query)
	}
	if res == nil {
		logrus.WithField("storage", query.String()).Debug("storage value absent, using default")
		return query.Fallback, nil
	}
	data, err := codec.HexDecodeString(*res)
	if err != nil {
		return nil, xcerrors.Submissionf(err, "invalid storage value for %s", query)
	}
	return data, nil
}

package tx

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/extrinsic"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/extrinsic/extensions"
	"github.com/cordialsys/xcall/chain/substrate/tx_input"
	"golang.org/x/crypto/blake2b"
)

// payloads longer than this are signed by their blake2b-256 hash
const maxUnhashedPayload = 256

// Tx is a signable extrinsic of one call
type Tx struct {
	extrinsic            extrinsic.DynamicExtrinsic
	meta                 tx_input.Metadata
	sender               types.MultiAddress
	genesisHash, curHash types.Hash
	rv                   types.RuntimeVersion
	tip, nonce           uint64
	signature            []byte
	payload              *extrinsic.Payload
}

func NewTx(call types.Call, sender types.MultiAddress, txInput *tx_input.TxInput) (*Tx, error) {
	tx := &Tx{
		meta:        txInput.Meta,
		extrinsic:   extrinsic.NewDynamicExtrinsic(&call),
		sender:      sender,
		nonce:       txInput.Nonce,
		genesisHash: txInput.GenesisHash,
		curHash:     txInput.CurHash,
		rv:          txInput.Rv,
		tip:         txInput.Tip,
	}
	err := tx.build()
	return tx, err
}

// signingOptions are the signed extensions of every extrinsic: immortal, no metadata hash check
func (tx *Tx) signingOptions() []extrinsic.SigningOption {
	return []extrinsic.SigningOption{
		extrinsic.WithEra(types.ExtrinsicEra{IsImmortalEra: true}, tx.genesisHash),
		extrinsic.WithNonce(types.NewUCompactFromUInt(tx.nonce)),
		extrinsic.WithTip(types.NewUCompactFromUInt(tx.tip)),
		extrinsic.WithSpecVersion(tx.rv.SpecVersion),
		extrinsic.WithTransactionVersion(tx.rv.TransactionVersion),
		extrinsic.WithGenesisHash(tx.genesisHash),
		extrinsic.WithMetadataMode(extensions.CheckMetadataModeDisabled, extensions.CheckMetadataHash{Hash: types.NewEmptyOption[types.H256]()}),
	}
}

func (tx *Tx) build() error {
	if version := tx.extrinsic.Type(); version != types.ExtrinsicVersion4 {
		return fmt.Errorf("only v4 extrinsics can be signed, got version %d", version)
	}
	method, err := codec.Encode(tx.extrinsic.Method)
	if err != nil {
		return fmt.Errorf("could not encode call: %w", err)
	}
	payload, err := tx_input.CreatePayload(&tx.meta, method)
	if err != nil {
		return fmt.Errorf("could not create signing payload: %w", err)
	}

	values := extrinsic.SignedFieldValues{}
	for _, apply := range tx.signingOptions() {
		apply(values)
	}
	if err = payload.MutateSignedFields(values); err != nil {
		return fmt.Errorf("could not set signed extensions: %w", err)
	}
	tx.payload = payload
	return nil
}

func HashSerialized(serialized []byte) []byte {
	hash := blake2b.Sum256(serialized)
	return hash[:]
}

// Hash returns the blake2b-256 hash of the serialized extrinsic, empty until it can be serialized
func (tx *Tx) Hash() string {
	ser, err := tx.Serialize()
	if err != nil {
		return ""
	}
	return codec.HexEncodeToString(HashSerialized(ser))
}

// Sighash returns the payload to sign
func (tx *Tx) Sighash() ([]byte, error) {
	b, err := codec.Encode(tx.payload)
	if err != nil {
		return nil, err
	}
	if len(b) > maxUnhashedPayload {
		h := blake2b.Sum256(b)
		b = h[:]
	}
	return b, nil
}

// SetSignature attaches an sr25519 signature of the sighash
func (tx *Tx) SetSignature(signature []byte) error {
	if len(signature) != 64 {
		return fmt.Errorf("expected a 64 byte sr25519 signature, got %d bytes", len(signature))
	}
	tx.extrinsic.Signature = &extrinsic.Signature{
		Signer: tx.sender,
		Signature: types.MultiSignature{
			IsSr25519: true,
			AsSr25519: types.NewSignature(signature),
		},
		SignedFields: tx.payload.SignedFields,
	}
	tx.extrinsic.Version |= types.ExtrinsicBitSigned
	tx.signature = signature
	return nil
}

func (tx *Tx) Signature() []byte {
	return tx.signature
}

// Serialize returns the SCALE encoded extrinsic
func (tx *Tx) Serialize() ([]byte, error) {
	return codec.Encode(tx.extrinsic)
}

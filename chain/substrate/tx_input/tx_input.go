package tx_input

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// TxInput is the chain state a transaction is signed against.
type TxInput struct {
	Meta          Metadata             `json:"meta,omitempty"`
	GenesisHash   types.Hash           `json:"genesis_hash,omitempty"`
	CurHash       types.Hash           `json:"current_hash,omitempty"`
	Rv            types.RuntimeVersion `json:"runtime_version,omitempty"`
	CurrentHeight uint64               `json:"current_height,omitempty"`
	Tip           uint64               `json:"tip,omitempty"`
	Nonce         uint64               `json:"account_nonce,omitempty"`
}

func NewTxInput() *TxInput {
	return &TxInput{}
}

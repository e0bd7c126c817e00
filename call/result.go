package call

import (
	"fmt"

	"github.com/cordialsys/xcall/chain/substrate/address"
	xcerrors "github.com/cordialsys/xcall/client/errors"
	"github.com/cordialsys/xcall/pkg/hex"
)

type ResultKind string

const (
	ResultSubmitted ResultKind = "submitted"
	ResultCanceled  ResultKind = "canceled"
	ResultFailed    ResultKind = "failed"
)

// Receipt of one call of a session, a submitted extrinsic or a storage read
type Receipt struct {
	Pallet    string `json:"pallet"`
	Operation string `json:"operation"`
	// rendered call, e.g. Balances.transfer(5Grw..., 1000)
	Call     string  `json:"call"`
	CallData hex.Hex `json:"call_data,omitempty"`
	// extrinsic hash as reported by the node
	Hash   string          `json:"hash,omitempty"`
	Signer address.Address `json:"signer,omitempty"`
	// storage reads carry the decoded value instead of a hash
	Query bool   `json:"query,omitempty"`
	Value string `json:"value,omitempty"`
}

// Result of a call session
type Result struct {
	Kind    ResultKind `json:"kind"`
	Session string     `json:"session"`
	// one per completed call, in order
	Receipts []*Receipt `json:"receipts,omitempty"`
	// why the session was canceled
	Reason string `json:"reason,omitempty"`
	// failure kind and message
	ErrorKind xcerrors.Status `json:"error_kind,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// Receipt of the last completed call
func (r *Result) Receipt() *Receipt {
	if len(r.Receipts) == 0 {
		return nil
	}
	return r.Receipts[len(r.Receipts)-1]
}

func (r *Result) Err() error {
	switch r.Kind {
	case ResultFailed:
		return xcerrors.Errorf(r.ErrorKind, "%s", r.Message)
	case ResultCanceled:
		return xcerrors.Canceledf("%s", r.Reason)
	}
	return nil
}

func (r *Result) String() string {
	switch r.Kind {
	case ResultFailed:
		return fmt.Sprintf("failed: %s", r.Message)
	case ResultCanceled:
		return fmt.Sprintf("canceled: %s", r.Reason)
	}
	return fmt.Sprintf("submitted %d call(s)", len(r.Receipts))
}

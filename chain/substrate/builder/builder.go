package builder

import (
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/cordialsys/xcall/chain/substrate/registry"
	"github.com/cordialsys/xcall/chain/substrate/tx_input"
	"github.com/cordialsys/xcall/chain/substrate/value"
	xcerrors "github.com/cordialsys/xcall/client/errors"
	"github.com/cordialsys/xcall/pkg/hex"
)

// CallBuilder encodes resolved argument text into calls of the runtime it was built for.
type CallBuilder struct {
	registry *registry.Registry
	encoder  *value.Encoder
}

func NewCallBuilder(reg *registry.Registry) *CallBuilder {
	return &CallBuilder{
		registry: reg,
		encoder:  value.NewEncoder(reg.Lookup()),
	}
}

// Call is an encoded, unsigned call of one extrinsic.
type Call struct {
	Pallet    string
	Extrinsic string
	// Argument text in declared order
	Args []string
	call types.Call
}

func (c *Call) Call() types.Call {
	return c.call
}

// Encode returns the call index followed by the encoded arguments.
func (c *Call) Encode() ([]byte, error) {
	return codec.Encode(c.call)
}

// Bytes is the encoded call, nil if it cannot be encoded
func (c *Call) Bytes() hex.Hex {
	bz, err := c.Encode()
	if err != nil {
		return nil
	}
	return bz
}

// CallData is the hex form of the encoded call, as accepted by block explorers.
func (c *Call) CallData() string {
	bz := c.Bytes()
	if bz == nil {
		return ""
	}
	return bz.String()
}

func (c *Call) String() string {
	return fmt.Sprintf("%s.%s(%s)", c.Pallet, c.Extrinsic, strings.Join(c.Args, ", "))
}

// Build encodes a call. The argument count must match the extrinsic exactly.
func (b *CallBuilder) Build(palletName string, extrinsicName string, args []string) (*Call, error) {
	pallet, err := b.registry.FindPallet(palletName)
	if err != nil {
		return nil, err
	}
	extrinsic, err := pallet.FindExtrinsic(extrinsicName)
	if err != nil {
		return nil, err
	}
	if len(args) != len(extrinsic.Args) {
		return nil, xcerrors.ArgumentCountMismatchf(
			"%s.%s expects %d argument(s), got %d", pallet.Name, extrinsic.Name, len(extrinsic.Args), len(args),
		)
	}
	encodedArgs, err := b.encodeArgs(pallet.Name, extrinsic.Name, extrinsic.Args, args)
	if err != nil {
		return nil, err
	}
	return &Call{
		Pallet:    pallet.Name,
		Extrinsic: extrinsic.Name,
		Args:      args,
		call:      tx_input.NewCall(types.CallIndex{SectionIndex: pallet.Index, MethodIndex: extrinsic.Index}, encodedArgs...),
	}, nil
}

func (b *CallBuilder) encodeArgs(pallet string, operation string, descriptors []*registry.Arg, args []string) ([][]byte, error) {
	encoded := make([][]byte, len(args))
	for i, text := range args {
		bz, err := b.encoder.Encode(descriptors[i].TypeID, text)
		if err != nil {
			return nil, xcerrors.Encodingf(err, "%s.%s argument %d (%s)", pallet, operation, i, descriptors[i].Name)
		}
		encoded[i] = bz
	}
	return encoded, nil
}

// StorageQuery is an encoded key of a storage entry and what is needed to read its value.
type StorageQuery struct {
	Pallet string
	Entry  string
	Keys   []string
	Key    types.StorageKey
	// type of the stored value
	ValueType int64
	// returned in place of an absent value
	Fallback []byte
}

func (q *StorageQuery) String() string {
	return fmt.Sprintf("%s.%s(%s)", q.Pallet, q.Entry, strings.Join(q.Keys, ", "))
}

// BuildStorageQuery encodes the key of a storage entry. Plain entries take no keys.
func (b *CallBuilder) BuildStorageQuery(palletName string, entryName string, keys []string) (*StorageQuery, error) {
	pallet, err := b.registry.FindPallet(palletName)
	if err != nil {
		return nil, err
	}
	entry, err := pallet.FindStorage(entryName)
	if err != nil {
		return nil, err
	}
	if len(keys) != len(entry.Keys) {
		return nil, xcerrors.ArgumentCountMismatchf(
			"%s.%s expects %d key(s), got %d", pallet.Name, entry.Name, len(entry.Keys), len(keys),
		)
	}
	encodedKeys, err := b.encodeArgs(pallet.Name, entry.Name, entry.Keys, keys)
	if err != nil {
		return nil, err
	}
	key, err := types.CreateStorageKey(b.registry.Metadata(), pallet.StoragePrefix, entry.Name, encodedKeys...)
	if err != nil {
		return nil, xcerrors.Encodingf(err, "%s.%s storage key", pallet.Name, entry.Name)
	}
	return &StorageQuery{
		Pallet:    pallet.Name,
		Entry:     entry.Name,
		Keys:      keys,
		Key:       key,
		ValueType: entry.ValueType,
		Fallback:  entry.Fallback,
	}, nil
}

package registry

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	xcerrors "github.com/cordialsys/xcall/client/errors"
	"github.com/tidwall/btree"
)

// Extrinsic is a callable operation of a pallet.
type Extrinsic struct {
	Name  string `json:"name"`
	Docs  string `json:"docs,omitempty"`
	Index uint8  `json:"index"`
	// Ordered as required by the encoding
	Args []*Arg `json:"args"`
}

// StorageEntry is a queryable storage item of a pallet.
type StorageEntry struct {
	Name string `json:"name"`
	Docs string `json:"docs,omitempty"`
	// One per hasher of a map, empty for plain storage
	Keys      []*Arg `json:"keys,omitempty"`
	ValueType int64  `json:"value_type"`
	IsMap     bool   `json:"is_map,omitempty"`
	// Encoded default, returned by the node when the entry is absent
	Fallback []byte `json:"-"`
}

// Pallet is one module of the runtime.
type Pallet struct {
	Name  string `json:"name"`
	Docs  string `json:"docs,omitempty"`
	Index uint8  `json:"index"`
	// prefix of storage keys, usually the pallet name
	StoragePrefix string          `json:"storage_prefix,omitempty"`
	Extrinsics    []*Extrinsic    `json:"extrinsics,omitempty"`
	Storage       []*StorageEntry `json:"storage,omitempty"`
}

// Registry is an immutable view of the call surface of one runtime.
type Registry struct {
	meta    *types.Metadata
	lookup  *Lookup
	pallets []*Pallet
	byName  *btree.Map[string, *Pallet]
}

// New builds a registry from decoded runtime metadata.
func New(meta *types.Metadata) (*Registry, error) {
	if meta == nil {
		return nil, xcerrors.MetadataFetchf(nil, "no metadata")
	}
	if meta.Version != 14 {
		return nil, xcerrors.MetadataFetchf(nil, "unsupported metadata version %d, expecting 14", meta.Version)
	}
	v14 := &meta.AsMetadataV14
	lookup := NewLookup(v14)
	reg := &Registry{
		meta:   meta,
		lookup: lookup,
		byName: btree.NewMap[string, *Pallet](0),
	}
	for _, palletMeta := range v14.Pallets {
		pallet, err := newPallet(lookup, palletMeta)
		if err != nil {
			return nil, xcerrors.MetadataFetchf(err, "malformed pallet %s", palletMeta.Name)
		}
		reg.pallets = append(reg.pallets, pallet)
		reg.byName.Set(pallet.Name, pallet)
	}
	return reg, nil
}

func newPallet(lookup *Lookup, palletMeta types.PalletMetadataV14) (*Pallet, error) {
	pallet := &Pallet{
		Name:  string(palletMeta.Name),
		Index: uint8(palletMeta.Index),
	}
	if palletMeta.HasCalls {
		callType, err := lookup.Get(palletMeta.Calls.Type.Int64())
		if err != nil {
			return nil, err
		}
		if !callType.Def.IsVariant {
			return nil, fmt.Errorf("call type of %s is not an enum", palletMeta.Name)
		}
		for _, variant := range callType.Def.Variant.Variants {
			extrinsic := &Extrinsic{
				Name:  string(variant.Name),
				Docs:  joinDocs(variant.Docs),
				Index: uint8(variant.Index),
			}
			builder := newArgBuilder(lookup)
			for i, field := range variant.Fields {
				arg, err := builder.fromField(field, i)
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", pallet.Name, extrinsic.Name, err)
				}
				extrinsic.Args = append(extrinsic.Args, arg)
			}
			pallet.Extrinsics = append(pallet.Extrinsics, extrinsic)
		}
	}
	if palletMeta.HasStorage {
		pallet.StoragePrefix = string(palletMeta.Storage.Prefix)
		for _, item := range palletMeta.Storage.Items {
			entry, err := newStorageEntry(lookup, item)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", pallet.Name, item.Name, err)
			}
			pallet.Storage = append(pallet.Storage, entry)
		}
	}
	return pallet, nil
}

func newStorageEntry(lookup *Lookup, item types.StorageEntryMetadataV14) (*StorageEntry, error) {
	entry := &StorageEntry{
		Name:     string(item.Name),
		Docs:     joinDocs(item.Documentation),
		Fallback: item.Fallback,
	}
	if item.Type.IsPlainType {
		entry.ValueType = item.Type.AsPlainType.Int64()
		return entry, nil
	}
	if !item.Type.IsMap {
		return nil, fmt.Errorf("unsupported storage entry type")
	}
	entry.IsMap = true
	entry.ValueType = item.Type.AsMap.Value.Int64()
	keyID := item.Type.AsMap.Key.Int64()
	hashers := len(item.Type.AsMap.Hashers)

	builder := newArgBuilder(lookup)
	if hashers <= 1 {
		key, err := builder.fromType("key", keyID)
		if err != nil {
			return nil, err
		}
		entry.Keys = []*Arg{key}
		return entry, nil
	}
	keyType, err := lookup.Get(keyID)
	if err != nil {
		return nil, err
	}
	if !keyType.Def.IsTuple || len(keyType.Def.Tuple) != hashers {
		return nil, fmt.Errorf("expected a tuple of %d keys for %d hashers", hashers, hashers)
	}
	for i, elem := range keyType.Def.Tuple {
		key, err := builder.fromType(fmt.Sprintf("key%d", i+1), elem.Int64())
		if err != nil {
			return nil, err
		}
		entry.Keys = append(entry.Keys, key)
	}
	return entry, nil
}

// Pallets in metadata order.
func (r *Registry) Pallets() []*Pallet {
	return r.pallets
}

// SortedPallets in name order.
func (r *Registry) SortedPallets() []*Pallet {
	pallets := make([]*Pallet, 0, r.byName.Len())
	r.byName.Scan(func(_ string, pallet *Pallet) bool {
		pallets = append(pallets, pallet)
		return true
	})
	return pallets
}

func (r *Registry) Lookup() *Lookup {
	return r.lookup
}

func (r *Registry) Metadata() *types.Metadata {
	return r.meta
}

// FindPallet by exact, case-sensitive name.
func (r *Registry) FindPallet(name string) (*Pallet, error) {
	pallet, ok := r.byName.Get(name)
	if !ok {
		return nil, xcerrors.UnknownPalletf("pallet %q not found in the chain metadata", name)
	}
	return pallet, nil
}

// FindExtrinsic by exact, case-sensitive name.
func (p *Pallet) FindExtrinsic(name string) (*Extrinsic, error) {
	for _, extrinsic := range p.Extrinsics {
		if extrinsic.Name == name {
			return extrinsic, nil
		}
	}
	return nil, xcerrors.UnknownExtrinsicf("extrinsic %q not found in pallet %s", name, p.Name)
}

// FindStorage by exact, case-sensitive name.
func (p *Pallet) FindStorage(name string) (*StorageEntry, error) {
	for _, entry := range p.Storage {
		if entry.Name == name {
			return entry, nil
		}
	}
	return nil, xcerrors.UnknownStoragef("storage entry %q not found in pallet %s", name, p.Name)
}

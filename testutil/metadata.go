package testutil

import (
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// "meta" in little endian, leads every encoded metadata blob
const metadataMagic uint32 = 0x6174656d

// MetadataBuilder assembles a v14 type registry by hand, returning the id of every added type.
type MetadataBuilder struct {
	lookup []types.PortableTypeV14
}

func NewMetadataBuilder() *MetadataBuilder {
	return &MetadataBuilder{}
}

func lookupID(id int64) types.Si1LookupTypeID {
	return types.NewSi1LookupTypeIDFromUInt(uint64(id))
}

func path(p string) types.Si1Path {
	if p == "" {
		return types.Si1Path{}
	}
	segments := strings.Split(p, "::")
	out := make(types.Si1Path, len(segments))
	for i, segment := range segments {
		out[i] = types.Text(segment)
	}
	return out
}

func (b *MetadataBuilder) Add(ty types.Si1Type) int64 {
	id := int64(len(b.lookup))
	b.lookup = append(b.lookup, types.PortableTypeV14{
		ID:   lookupID(id),
		Type: ty,
	})
	return id
}

// Params sets the generic parameters of a type, used for labels like MultiAddress<AccountId32, ()>.
func (b *MetadataBuilder) Params(id int64, params ...int64) {
	ty := &b.lookup[id].Type
	ty.Params = nil
	for i, param := range params {
		ty.Params = append(ty.Params, types.Si1TypeParameter{
			Name:    types.Text(string(rune('A' + i))),
			HasType: true,
			Type:    lookupID(param),
		})
	}
}

func (b *MetadataBuilder) Primitive(prim types.Si0TypeDefPrimitive) int64 {
	return b.Add(types.Si1Type{
		Def: types.Si1TypeDef{
			IsPrimitive: true,
			Primitive:   types.Si1TypeDefPrimitive{Si0TypeDefPrimitive: prim},
		},
	})
}

func (b *MetadataBuilder) Composite(typePath string, fields ...types.Si1Field) int64 {
	return b.Add(types.Si1Type{
		Path: path(typePath),
		Def: types.Si1TypeDef{
			IsComposite: true,
			Composite:   types.Si1TypeDefComposite{Fields: fields},
		},
	})
}

func (b *MetadataBuilder) Variant(typePath string, variants ...types.Si1Variant) int64 {
	return b.Add(types.Si1Type{
		Path: path(typePath),
		Def: types.Si1TypeDef{
			IsVariant: true,
			Variant:   types.Si1TypeDefVariant{Variants: variants},
		},
	})
}

func (b *MetadataBuilder) Sequence(elem int64) int64 {
	return b.Add(types.Si1Type{
		Def: types.Si1TypeDef{
			IsSequence: true,
			Sequence:   types.Si1TypeDefSequence{Type: lookupID(elem)},
		},
	})
}

func (b *MetadataBuilder) Array(length uint32, elem int64) int64 {
	return b.Add(types.Si1Type{
		Def: types.Si1TypeDef{
			IsArray: true,
			Array:   types.Si1TypeDefArray{Len: types.U32(length), Type: lookupID(elem)},
		},
	})
}

func (b *MetadataBuilder) Tuple(elems ...int64) int64 {
	tuple := types.Si1TypeDefTuple{}
	for _, elem := range elems {
		tuple = append(tuple, lookupID(elem))
	}
	return b.Add(types.Si1Type{
		Def: types.Si1TypeDef{
			IsTuple: true,
			Tuple:   tuple,
		},
	})
}

func (b *MetadataBuilder) Compact(inner int64) int64 {
	return b.Add(types.Si1Type{
		Def: types.Si1TypeDef{
			IsCompact: true,
			Compact:   types.Si1TypeDefCompact{Type: lookupID(inner)},
		},
	})
}

func (b *MetadataBuilder) Option(inner int64) int64 {
	id := b.Variant("Option",
		NewVariant("None", 0),
		NewVariant("Some", 1, NewField("", inner, "")),
	)
	b.Params(id, inner)
	return id
}

// NewField builds a field, unnamed when name is empty.
func NewField(name string, ty int64, typeName string) types.Si1Field {
	return types.Si1Field{
		HasName:     name != "",
		Name:        types.Text(name),
		Type:        lookupID(ty),
		HasTypeName: typeName != "",
		TypeName:    types.Text(typeName),
	}
}

func NewVariant(name string, index uint8, fields ...types.Si1Field) types.Si1Variant {
	return types.Si1Variant{
		Name:   types.Text(name),
		Fields: fields,
		Index:  types.U8(index),
	}
}

func (b *MetadataBuilder) Docs(id int64, docs ...string) {
	for _, doc := range docs {
		b.lookup[id].Type.Docs = append(b.lookup[id].Type.Docs, types.Text(doc))
	}
}

func NewPallet(name string, index uint8, callsType int64, storage ...types.StorageEntryMetadataV14) types.PalletMetadataV14 {
	pallet := types.PalletMetadataV14{
		Name:  types.Text(name),
		Index: types.U8(index),
	}
	if callsType >= 0 {
		pallet.HasCalls = true
		pallet.Calls = types.FunctionMetadataV14{Type: lookupID(callsType)}
	}
	if len(storage) > 0 {
		pallet.HasStorage = true
		pallet.Storage = types.StorageMetadataV14{
			Prefix: types.Text(name),
			Items:  storage,
		}
	}
	return pallet
}

func NewPlainStorage(name string, value int64, fallback []byte, docs ...string) types.StorageEntryMetadataV14 {
	entry := types.StorageEntryMetadataV14{
		Name:     types.Text(name),
		Modifier: types.StorageFunctionModifierV0{IsDefault: true},
		Type: types.StorageEntryTypeV14{
			IsPlainType: true,
			AsPlainType: lookupID(value),
		},
		Fallback: fallback,
	}
	for _, doc := range docs {
		entry.Documentation = append(entry.Documentation, types.Text(doc))
	}
	return entry
}

// NewMapStorage builds a map entry hashed with blake2_128_concat.
func NewMapStorage(name string, key, value int64, fallback []byte, docs ...string) types.StorageEntryMetadataV14 {
	entry := types.StorageEntryMetadataV14{
		Name:     types.Text(name),
		Modifier: types.StorageFunctionModifierV0{IsDefault: true},
		Type: types.StorageEntryTypeV14{
			IsMap: true,
			AsMap: types.MapTypeV14{
				Hashers: []types.StorageHasherV10{{IsBlake2_128Concat: true}},
				Key:     lookupID(key),
				Value:   lookupID(value),
			},
		},
		Fallback: fallback,
	}
	for _, doc := range docs {
		entry.Documentation = append(entry.Documentation, types.Text(doc))
	}
	return entry
}

func (b *MetadataBuilder) Build(pallets []types.PalletMetadataV14, signedExtensions ...string) *types.Metadata {
	meta := &types.Metadata{
		MagicNumber: metadataMagic,
		Version:     14,
	}
	meta.AsMetadataV14.Pallets = pallets
	meta.AsMetadataV14.Extrinsic.Version = 4
	for _, name := range signedExtensions {
		ty := b.Composite("frame_system::extensions::" + name)
		meta.AsMetadataV14.Extrinsic.SignedExtensions = append(meta.AsMetadataV14.Extrinsic.SignedExtensions, types.SignedExtensionMetadataV14{
			Identifier:       types.Text(name),
			Type:             lookupID(ty),
			AdditionalSigned: lookupID(ty),
		})
	}
	meta.AsMetadataV14.Lookup.Types = b.lookup
	return meta
}

// Type ids of the development runtime built by DevMetadata
const (
	TypeAccountId32     int64 = 2
	TypeCompactU128     int64 = 5
	TypeMultiAddress    int64 = 10
	TypeTimepoint       int64 = 16
	TypeOptionTimepoint int64 = 17
	TypeWeight          int64 = 20
	TypeAccountInfo     int64 = 24
	TypeRewardDest      int64 = 25
)

const (
	Alice          = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	AlicePublicKey = "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
	Bob            = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
	BobPublicKey   = "8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48"
)

// DevMetadata is a small runtime resembling a substrate development chain.
func DevMetadata() *types.Metadata {
	b := NewMetadataBuilder()
	u8 := b.Primitive(types.IsU8)
	bytes32 := b.Array(32, u8)
	accountID := b.Composite("sp_core::crypto::AccountId32", NewField("", bytes32, "[u8; 32]"))
	u32 := b.Primitive(types.IsU32)
	u128 := b.Primitive(types.IsU128)
	compactU128 := b.Compact(u128)
	unit := b.Tuple()
	compactUnit := b.Compact(unit)
	bytes := b.Sequence(u8)
	bytes20 := b.Array(20, u8)
	multiAddress := b.Variant("sp_runtime::multiaddress::MultiAddress",
		NewVariant("Id", 0, NewField("", accountID, "AccountId")),
		NewVariant("Index", 1, NewField("", compactUnit, "AccountIndex")),
		NewVariant("Raw", 2, NewField("", bytes, "Vec<u8>")),
		NewVariant("Address32", 3, NewField("", bytes32, "[u8; 32]")),
		NewVariant("Address20", 4, NewField("", bytes20, "[u8; 20]")),
	)
	b.Params(multiAddress, accountID, unit)
	boolean := b.Primitive(types.IsBool)
	balancesCall := b.Variant("pallet_balances::pallet::Call",
		NewVariant("transfer", 0,
			NewField("dest", multiAddress, "AccountIdLookupOf<T>"),
			NewField("value", compactU128, "T::Balance"),
		),
		NewVariant("transfer_keep_alive", 3,
			NewField("dest", multiAddress, "AccountIdLookupOf<T>"),
			NewField("value", compactU128, "T::Balance"),
		),
		NewVariant("transfer_all", 4,
			NewField("dest", multiAddress, "AccountIdLookupOf<T>"),
			NewField("keep_alive", boolean, "bool"),
		),
	)
	b.lookup[balancesCall].Type.Def.Variant.Variants[0].Docs = []types.Text{"Transfer some liquid free balance to another account."}
	b.lookup[balancesCall].Type.Def.Variant.Variants[1].Docs = []types.Text{"Same as the transfer call, but with a check that the transfer will not kill the origin account."}
	systemCall := b.Variant("frame_system::pallet::Call",
		NewVariant("remark", 0, NewField("remark", bytes, "Vec<u8>")),
	)
	b.lookup[systemCall].Type.Def.Variant.Variants[0].Docs = []types.Text{"Make some on-chain remark."}
	u16 := b.Primitive(types.IsU16)
	signatories := b.Sequence(accountID)
	timepoint := b.Composite("pallet_multisig::Timepoint",
		NewField("height", u32, "BlockNumber"),
		NewField("index", u32, "u32"),
	)
	optionTimepoint := b.Option(timepoint)
	u64 := b.Primitive(types.IsU64)
	compactU64 := b.Compact(u64)
	weight := b.Composite("sp_weights::weight_v2::Weight",
		NewField("ref_time", compactU64, "u64"),
		NewField("proof_size", compactU64, "u64"),
	)
	multisigCall := b.Variant("pallet_multisig::pallet::Call",
		NewVariant("approve_as_multi", 2,
			NewField("threshold", u16, "u16"),
			NewField("other_signatories", signatories, "Vec<T::AccountId>"),
			NewField("maybe_timepoint", optionTimepoint, "Option<Timepoint<BlockNumberFor<T>>>"),
			NewField("call_hash", bytes32, "[u8; 32]"),
			NewField("max_weight", weight, "Weight"),
		),
	)
	extraFlags := b.Composite("pallet_balances::types::ExtraFlags", NewField("", u128, "u128"))
	accountData := b.Composite("pallet_balances::types::AccountData",
		NewField("free", u128, "Balance"),
		NewField("reserved", u128, "Balance"),
		NewField("frozen", u128, "Balance"),
		NewField("flags", extraFlags, "ExtraFlags"),
	)
	accountInfo := b.Composite("frame_system::AccountInfo",
		NewField("nonce", u32, "Nonce"),
		NewField("consumers", u32, "RefCount"),
		NewField("providers", u32, "RefCount"),
		NewField("sufficients", u32, "RefCount"),
		NewField("data", accountData, "AccountData"),
	)
	rewardDestination := b.Variant("pallet_staking::RewardDestination",
		NewVariant("Staked", 0),
		NewVariant("Stash", 1),
		NewVariant("Controller", 2),
		NewVariant("Account", 3, NewField("", accountID, "AccountId")),
		NewVariant("None", 4),
	)
	stakingCall := b.Variant("pallet_staking::pallet::pallet::Call",
		NewVariant("bond", 0,
			NewField("value", compactU128, "BalanceOf<T>"),
			NewField("payee", rewardDestination, "RewardDestination<T::AccountId>"),
		),
	)

	pallets := []types.PalletMetadataV14{
		NewPallet("System", 0, systemCall,
			NewMapStorage("Account", accountID, accountInfo, make([]byte, 80), "The full account information for a particular account ID."),
			NewPlainStorage("Number", u32, make([]byte, 4), "The current block number being processed."),
		),
		NewPallet("Timestamp", 3, -1,
			NewPlainStorage("Now", u64, make([]byte, 8), "The current time for the current block."),
		),
		NewPallet("Balances", 5, balancesCall),
		NewPallet("Staking", 7, stakingCall),
		NewPallet("Multisig", 30, multisigCall),
	}
	return b.Build(pallets,
		"CheckNonZeroSender",
		"CheckSpecVersion",
		"CheckTxVersion",
		"CheckGenesis",
		"CheckMortality",
		"CheckNonce",
		"CheckWeight",
		"ChargeTransactionPayment",
	)
}

package registry

import (
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// Lookup resolves type ids of the portable registry carried by v14 metadata.
type Lookup struct {
	types map[int64]*types.Si1Type
}

func NewLookup(meta *types.MetadataV14) *Lookup {
	lookup := &Lookup{types: make(map[int64]*types.Si1Type, len(meta.Lookup.Types))}
	for i := range meta.Lookup.Types {
		portable := meta.Lookup.Types[i]
		ty := portable.Type
		lookup.types[portable.ID.Int64()] = &ty
	}
	return lookup
}

func (l *Lookup) Get(id int64) (*types.Si1Type, error) {
	ty, ok := l.types[id]
	if !ok {
		return nil, fmt.Errorf("type %d is not defined in the metadata lookup", id)
	}
	return ty, nil
}

var primitiveNames = map[types.Si0TypeDefPrimitive]string{
	types.IsBool: "bool",
	types.IsChar: "char",
	types.IsStr:  "str",
	types.IsU8:   "u8",
	types.IsU16:  "u16",
	types.IsU32:  "u32",
	types.IsU64:  "u64",
	types.IsU128: "u128",
	types.IsU256: "u256",
	types.IsI8:   "i8",
	types.IsI16:  "i16",
	types.IsI32:  "i32",
	types.IsI64:  "i64",
	types.IsI128: "i128",
	types.IsI256: "i256",
}

func PrimitiveName(p types.Si0TypeDefPrimitive) string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return fmt.Sprintf("primitive(%d)", p)
}

// generic params are not followed past this depth
const maxLabelDepth = 6

// TypeName renders a human readable label for a type, e.g. "Compact<u128>" or "Option<AccountId32>".
func (l *Lookup) TypeName(id int64) string {
	return l.typeName(id, 0)
}

func (l *Lookup) typeName(id int64, depth int) string {
	ty, err := l.Get(id)
	if err != nil {
		return fmt.Sprintf("<unknown %d>", id)
	}
	def := ty.Def
	switch {
	case def.IsPrimitive:
		return PrimitiveName(def.Primitive.Si0TypeDefPrimitive)
	case def.IsCompact:
		return "Compact<" + l.typeName(def.Compact.Type.Int64(), depth+1) + ">"
	case def.IsSequence:
		return "Vec<" + l.typeName(def.Sequence.Type.Int64(), depth+1) + ">"
	case def.IsArray:
		return fmt.Sprintf("[%s; %d]", l.typeName(def.Array.Type.Int64(), depth+1), def.Array.Len)
	case def.IsTuple:
		names := make([]string, len(def.Tuple))
		for i, elem := range def.Tuple {
			names[i] = l.typeName(elem.Int64(), depth+1)
		}
		return "(" + strings.Join(names, ", ") + ")"
	case def.IsBitSequence:
		return "BitVec"
	}

	if len(ty.Path) == 0 {
		if def.IsComposite && len(def.Composite.Fields) == 1 {
			return l.typeName(def.Composite.Fields[0].Type.Int64(), depth+1)
		}
		return fmt.Sprintf("type%d", id)
	}
	name := string(ty.Path[len(ty.Path)-1])
	if depth >= maxLabelDepth {
		return name
	}
	params := []string{}
	for _, param := range ty.Params {
		if param.HasType {
			params = append(params, l.typeName(param.Type.Int64(), depth+1))
		}
	}
	if len(params) > 0 {
		name += "<" + strings.Join(params, ", ") + ">"
	}
	return name
}

// IsOption reports whether the type is the well known `Option<T>` enum and returns T.
func IsOption(ty *types.Si1Type) (int64, bool) {
	if !ty.Def.IsVariant || len(ty.Path) == 0 || string(ty.Path[len(ty.Path)-1]) != "Option" {
		return 0, false
	}
	for _, variant := range ty.Def.Variant.Variants {
		if string(variant.Name) == "Some" && len(variant.Fields) == 1 {
			return variant.Fields[0].Type.Int64(), true
		}
	}
	return 0, false
}

func joinDocs(docs []types.Text) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if trimmed := strings.TrimSpace(string(doc)); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

package value

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/cordialsys/xcall/chain/substrate/address"
	"github.com/cordialsys/xcall/pkg/hex"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// TypeLookup resolves type ids of the metadata type registry.
type TypeLookup interface {
	Get(id int64) (*types.Si1Type, error)
}

// bounds nesting of the type tree while encoding
const maxDepth = 64

type Encoder struct {
	lookup TypeLookup
}

func NewEncoder(lookup TypeLookup) *Encoder {
	return &Encoder{lookup: lookup}
}

// Encode SCALE encodes the text of one argument against a type id. The whole text must be consumed.
func (e *Encoder) Encode(typeID int64, text string) ([]byte, error) {
	values, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return e.EncodeValues(typeID, values)
}

func (e *Encoder) EncodeValues(typeID int64, values []*Value) ([]byte, error) {
	cur := &cursor{items: values}
	buf := &bytes.Buffer{}
	if err := e.encode(buf, typeID, cur, 0); err != nil {
		return nil, err
	}
	if rest := cur.rest(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected trailing value(s): %s", Join(rest))
	}
	return buf.Bytes(), nil
}

type cursor struct {
	items []*Value
	pos   int
}

func (c *cursor) peek() (*Value, bool) {
	if c.pos >= len(c.items) {
		return nil, false
	}
	return c.items[c.pos], true
}

func (c *cursor) next() (*Value, bool) {
	v, ok := c.peek()
	if ok {
		c.pos++
	}
	return v, ok
}

func (c *cursor) rest() []*Value {
	return c.items[c.pos:]
}

func (e *Encoder) encode(buf *bytes.Buffer, id int64, cur *cursor, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("type %d is nested too deeply", id)
	}
	ty, err := e.lookup.Get(id)
	if err != nil {
		return err
	}
	def := ty.Def
	switch {
	case def.IsComposite:
		fieldTypes := make([]int64, len(def.Composite.Fields))
		for i, field := range def.Composite.Fields {
			fieldTypes[i] = field.Type.Int64()
		}
		return e.encodeFields(buf, fieldTypes, cur, depth)
	case def.IsTuple:
		fieldTypes := make([]int64, len(def.Tuple))
		for i, elem := range def.Tuple {
			fieldTypes[i] = elem.Int64()
		}
		return e.encodeFields(buf, fieldTypes, cur, depth)
	case def.IsVariant:
		return e.encodeVariant(buf, ty, cur, depth)
	case def.IsSequence:
		return e.encodeSequence(buf, def.Sequence.Type.Int64(), -1, cur, depth)
	case def.IsArray:
		return e.encodeSequence(buf, def.Array.Type.Int64(), int(def.Array.Len), cur, depth)
	case def.IsPrimitive:
		v, ok := cur.next()
		if !ok {
			return fmt.Errorf("missing value for %s", primitiveName(def.Primitive.Si0TypeDefPrimitive))
		}
		bz, err := encodePrimitive(def.Primitive.Si0TypeDefPrimitive, v)
		if err != nil {
			return err
		}
		buf.Write(bz)
		return nil
	case def.IsCompact:
		v, ok := cur.next()
		if !ok {
			return fmt.Errorf("missing value for compact")
		}
		return e.encodeCompact(buf, def.Compact.Type.Int64(), v, depth)
	case def.IsBitSequence:
		v, ok := cur.next()
		if !ok {
			return fmt.Errorf("missing value for bit sequence")
		}
		return encodeBits(buf, v)
	}
	return fmt.Errorf("type %d has an unsupported definition", id)
}

// encodeFields accepts either an explicit group `(a, b)` or the field values flattened into the cursor.
func (e *Encoder) encodeFields(buf *bytes.Buffer, fieldTypes []int64, cur *cursor, depth int) error {
	if v, ok := cur.peek(); ok && v.Kind == Group {
		err := e.encodeGroup(buf, fieldTypes, v, depth)
		if err == nil {
			cur.next()
			return nil
		}
		if len(fieldTypes) < 2 {
			return err
		}
		// the group may belong to the first field only, retry with the values flattened
	}
	for _, fieldType := range fieldTypes {
		if err := e.encode(buf, fieldType, cur, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeGroup(buf *bytes.Buffer, fieldTypes []int64, group *Value, depth int) error {
	sub := &cursor{items: group.Items}
	out := &bytes.Buffer{}
	for _, fieldType := range fieldTypes {
		if err := e.encode(out, fieldType, sub, depth+1); err != nil {
			return err
		}
	}
	if rest := sub.rest(); len(rest) > 0 {
		return fmt.Errorf("too many values in %s", group)
	}
	buf.Write(out.Bytes())
	return nil
}

func variantNames(ty *types.Si1Type) string {
	names := make([]string, len(ty.Def.Variant.Variants))
	for i, variant := range ty.Def.Variant.Variants {
		names[i] = string(variant.Name)
	}
	return strings.Join(names, ", ")
}

func findVariant(ty *types.Si1Type, name string) (types.Si1Variant, bool) {
	for _, variant := range ty.Def.Variant.Variants {
		if string(variant.Name) == name {
			return variant, true
		}
	}
	return types.Si1Variant{}, false
}

func isOption(ty *types.Si1Type) bool {
	return len(ty.Path) > 0 && string(ty.Path[len(ty.Path)-1]) == "Option"
}

func (e *Encoder) encodeVariant(buf *bytes.Buffer, ty *types.Si1Type, cur *cursor, depth int) error {
	v, ok := cur.next()
	if !ok {
		return fmt.Errorf("missing value, expected one of: %s", variantNames(ty))
	}
	var variant types.Si1Variant
	var fields *cursor
	ok = false
	switch v.Kind {
	case Named:
		variant, ok = findVariant(ty, v.Text)
		fields = &cursor{items: v.Items}
	case Scalar:
		variant, ok = findVariant(ty, v.Text)
		// the fields of a bare alternative follow it
		fields = cur
	}
	if !ok {
		// a plain value is taken as Some(value) for an option, and as Id(value) where an Id alternative exists
		fallback := "Id"
		if isOption(ty) {
			fallback = "Some"
		}
		variant, ok = findVariant(ty, fallback)
		if !ok || len(variant.Fields) != 1 {
			return fmt.Errorf("%s is not one of: %s", v, variantNames(ty))
		}
		fields = &cursor{items: []*Value{v}}
	}

	buf.WriteByte(byte(variant.Index))
	for _, field := range variant.Fields {
		if err := e.encode(buf, field.Type.Int64(), fields, depth+1); err != nil {
			return fmt.Errorf("%s: %w", variant.Name, err)
		}
	}
	if fields != cur {
		if rest := fields.rest(); len(rest) > 0 {
			return fmt.Errorf("too many values for %s: %s", variant.Name, Join(rest))
		}
	}
	return nil
}

// isByte reports whether the type is u8, through newtype wrappers.
func isByte(lookup TypeLookup, id int64) bool {
	for i := 0; i < maxDepth; i++ {
		ty, err := lookup.Get(id)
		if err != nil {
			return false
		}
		switch {
		case ty.Def.IsPrimitive:
			return ty.Def.Primitive.Si0TypeDefPrimitive == types.IsU8
		case ty.Def.IsComposite && len(ty.Def.Composite.Fields) == 1:
			id = ty.Def.Composite.Fields[0].Type.Int64()
		default:
			return false
		}
	}
	return false
}

// encodeSequence encodes a Vec<T> when length is negative, else a [T; length].
func (e *Encoder) encodeSequence(buf *bytes.Buffer, elemType int64, length int, cur *cursor, depth int) error {
	v, ok := cur.next()
	if !ok {
		return fmt.Errorf("missing value for sequence")
	}
	if v.Kind == Scalar || v.Kind == Quoted {
		if !isByte(e.lookup, elemType) {
			return fmt.Errorf("expected a list like [a, b] but got %s", v)
		}
		bz, err := parseBytes(v, length)
		if err != nil {
			return err
		}
		if length < 0 {
			writeCompact(buf, big.NewInt(int64(len(bz))))
		}
		buf.Write(bz)
		return nil
	}
	if v.Kind != List && v.Kind != Group {
		return fmt.Errorf("expected a list like [a, b] but got %s", v)
	}

	sub := &cursor{items: v.Items}
	elems := &bytes.Buffer{}
	count := 0
	for {
		if _, ok := sub.peek(); !ok {
			break
		}
		if err := e.encode(elems, elemType, sub, depth+1); err != nil {
			return fmt.Errorf("element %d: %w", count, err)
		}
		count++
	}
	if length >= 0 && count != length {
		return fmt.Errorf("expected %d elements but got %d", length, count)
	}
	if length < 0 {
		writeCompact(buf, big.NewInt(int64(count)))
	}
	buf.Write(elems.Bytes())
	return nil
}

// parseBytes reads byte content from hex, an SS58 address (32 byte arrays only) or text.
func parseBytes(v *Value, length int) ([]byte, error) {
	if v.Kind == Scalar && hex.IsPrefixed(v.Text) {
		bz, err := hex.Decode(v.Text)
		if err != nil {
			return nil, fmt.Errorf("invalid hex %s: %v", v.Text, err)
		}
		if length >= 0 && len(bz) != length {
			return nil, fmt.Errorf("expected %d bytes but %s has %d", length, v.Text, len(bz))
		}
		return bz, nil
	}
	if v.Kind == Scalar && length == 32 {
		return address.DecodeBytes(address.Address(v.Text))
	}
	bz := []byte(v.Text)
	if length >= 0 && len(bz) != length {
		return nil, fmt.Errorf("expected %d bytes but %s has %d", length, v, len(bz))
	}
	return bz, nil
}

func (e *Encoder) encodeCompact(buf *bytes.Buffer, id int64, v *Value, depth int) error {
	// unwrap newtypes such as Compact<Perbill>
	for i := 0; i < maxDepth; i++ {
		ty, err := e.lookup.Get(id)
		if err != nil {
			return err
		}
		switch {
		case ty.Def.IsPrimitive:
			prim := ty.Def.Primitive.Si0TypeDefPrimitive
			bits, signed, ok := integerWidth(prim)
			if !ok || signed {
				return fmt.Errorf("compact of %s is not supported", primitiveName(prim))
			}
			n, err := parseInteger(v, bits, false)
			if err != nil {
				return err
			}
			writeCompact(buf, n)
			return nil
		case ty.Def.IsComposite && len(ty.Def.Composite.Fields) == 1:
			id = ty.Def.Composite.Fields[0].Type.Int64()
		case ty.Def.IsComposite && len(ty.Def.Composite.Fields) == 0:
			// Compact<()>
			return nil
		default:
			return fmt.Errorf("compact of type %d is not supported", id)
		}
	}
	return fmt.Errorf("compact type %d is nested too deeply", id)
}

func writeCompact(buf *bytes.Buffer, n *big.Int) {
	bz, _ := codec.Encode(types.NewUCompact(n))
	buf.Write(bz)
}

func encodeBits(buf *bytes.Buffer, v *Value) error {
	var bits []bool
	switch v.Kind {
	case List, Group:
		for _, item := range v.Items {
			b, err := cast.ToBoolE(item.Text)
			if err != nil {
				return fmt.Errorf("invalid bit %s", item)
			}
			bits = append(bits, b)
		}
	case Scalar:
		text := strings.TrimPrefix(v.Text, "0b")
		for _, c := range text {
			switch c {
			case '0':
				bits = append(bits, false)
			case '1':
				bits = append(bits, true)
			default:
				return fmt.Errorf("invalid bit sequence %s", v.Text)
			}
		}
	default:
		return fmt.Errorf("invalid bit sequence %s", v)
	}
	// Lsb0 order over u8 storage
	bz := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			bz[i/8] |= 1 << (i % 8)
		}
	}
	writeCompact(buf, big.NewInt(int64(len(bits))))
	buf.Write(bz)
	return nil
}

var primitiveNames = map[types.Si0TypeDefPrimitive]string{
	types.IsBool: "bool", types.IsChar: "char", types.IsStr: "str",
	types.IsU8: "u8", types.IsU16: "u16", types.IsU32: "u32", types.IsU64: "u64", types.IsU128: "u128", types.IsU256: "u256",
	types.IsI8: "i8", types.IsI16: "i16", types.IsI32: "i32", types.IsI64: "i64", types.IsI128: "i128", types.IsI256: "i256",
}

func primitiveName(prim types.Si0TypeDefPrimitive) string {
	if name, ok := primitiveNames[prim]; ok {
		return name
	}
	return fmt.Sprintf("primitive(%d)", prim)
}

func integerWidth(prim types.Si0TypeDefPrimitive) (bits int, signed bool, ok bool) {
	switch prim {
	case types.IsU8:
		return 8, false, true
	case types.IsU16:
		return 16, false, true
	case types.IsU32:
		return 32, false, true
	case types.IsU64:
		return 64, false, true
	case types.IsU128:
		return 128, false, true
	case types.IsU256:
		return 256, false, true
	case types.IsI8:
		return 8, true, true
	case types.IsI16:
		return 16, true, true
	case types.IsI32:
		return 32, true, true
	case types.IsI64:
		return 64, true, true
	case types.IsI128:
		return 128, true, true
	case types.IsI256:
		return 256, true, true
	}
	return 0, false, false
}

// parseInteger accepts decimal (including scientific notation like 1e12) and 0x hex.
func parseInteger(v *Value, bits int, signed bool) (*big.Int, error) {
	if v.Kind != Scalar {
		return nil, fmt.Errorf("expected an integer but got %s", v)
	}
	text := strings.ReplaceAll(v.Text, "_", "")
	var n *big.Int
	if strings.HasPrefix(text, "0x") {
		var ok bool
		n, ok = new(big.Int).SetString(strings.TrimPrefix(text, "0x"), 16)
		if !ok {
			return nil, fmt.Errorf("invalid integer %s", v.Text)
		}
	} else {
		dec, err := decimal.NewFromString(text)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %s", v.Text)
		}
		if !dec.IsInteger() {
			return nil, fmt.Errorf("%s is not a whole number", v.Text)
		}
		n = dec.BigInt()
	}
	if !inRange(n, bits, signed) {
		kind := "u"
		if signed {
			kind = "i"
		}
		return nil, fmt.Errorf("%s is out of range for %s%d", v.Text, kind, bits)
	}
	return n, nil
}

func inRange(n *big.Int, bits int, signed bool) bool {
	if !signed {
		if n.Sign() < 0 {
			return false
		}
		if bits == 256 {
			_, overflow := uint256.FromBig(n)
			return !overflow
		}
		return n.BitLen() <= bits
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	min := new(big.Int).Neg(limit)
	return n.Cmp(min) >= 0 && n.Cmp(limit) < 0
}

func encodePrimitive(prim types.Si0TypeDefPrimitive, v *Value) ([]byte, error) {
	switch prim {
	case types.IsBool:
		if v.Kind != Scalar {
			return nil, fmt.Errorf("expected a bool but got %s", v)
		}
		b, err := cast.ToBoolE(v.Text)
		if err != nil {
			return nil, fmt.Errorf("invalid bool %s", v.Text)
		}
		return codec.Encode(types.NewBool(b))
	case types.IsStr:
		if v.Kind != Scalar && v.Kind != Quoted {
			return nil, fmt.Errorf("expected a string but got %s", v)
		}
		return codec.Encode(types.NewText(v.Text))
	case types.IsChar:
		runes := []rune(v.Text)
		if len(runes) != 1 || (v.Kind != Scalar && v.Kind != Quoted) {
			return nil, fmt.Errorf("expected a single character but got %s", v)
		}
		return codec.Encode(types.NewU32(uint32(runes[0])))
	}

	bits, signed, ok := integerWidth(prim)
	if !ok {
		return nil, fmt.Errorf("unsupported primitive %s", primitiveName(prim))
	}
	n, err := parseInteger(v, bits, signed)
	if err != nil {
		return nil, err
	}
	switch prim {
	case types.IsU8:
		return codec.Encode(types.NewU8(uint8(n.Uint64())))
	case types.IsU16:
		return codec.Encode(types.NewU16(uint16(n.Uint64())))
	case types.IsU32:
		return codec.Encode(types.NewU32(uint32(n.Uint64())))
	case types.IsU64:
		return codec.Encode(types.NewU64(n.Uint64()))
	case types.IsU128:
		return codec.Encode(types.NewU128(*n))
	case types.IsU256:
		return codec.Encode(types.NewU256(*n))
	case types.IsI8:
		return codec.Encode(types.NewI8(int8(n.Int64())))
	case types.IsI16:
		return codec.Encode(types.NewI16(int16(n.Int64())))
	case types.IsI32:
		return codec.Encode(types.NewI32(int32(n.Int64())))
	case types.IsI64:
		return codec.Encode(types.NewI64(n.Int64()))
	case types.IsI128:
		return codec.Encode(types.NewI128(*n))
	default:
		return codec.Encode(types.NewI256(*n))
	}
}

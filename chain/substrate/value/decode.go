package value

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/cordialsys/xcall/pkg/hex"
)

type Decoder struct {
	lookup TypeLookup
}

func NewDecoder(lookup TypeLookup) *Decoder {
	return &Decoder{lookup: lookup}
}

// input is the SCALE stream being decoded, with the reader kept to bound lengths read off the wire
type input struct {
	*scale.Decoder
	reader *bytes.Reader
}

// length reads a compact length prefix of items that take at least 1/perByte bytes each.
func (in *input) length(perByte int64) (int, error) {
	n, err := in.DecodeUintCompact()
	if err != nil {
		return 0, err
	}
	remaining := int64(in.reader.Len())
	if !n.IsInt64() || n.Int64() > remaining*perByte {
		return 0, fmt.Errorf("length %s exceeds the %d bytes remaining", n.String(), remaining)
	}
	return int(n.Int64()), nil
}

// Decode renders SCALE bytes of a type in the same text form that the Encoder accepts.
func (d *Decoder) Decode(typeID int64, data []byte) (string, error) {
	reader := bytes.NewReader(data)
	dec := &input{Decoder: scale.NewDecoder(reader), reader: reader}
	text, err := d.decode(dec, typeID, 0)
	if err != nil {
		return "", err
	}
	if reader.Len() > 0 {
		return "", fmt.Errorf("%d trailing bytes after decoding type %d", reader.Len(), typeID)
	}
	return text, nil
}

func (d *Decoder) decode(dec *input, id int64, depth int) (string, error) {
	if depth > maxDepth {
		return "", fmt.Errorf("type %d is nested too deeply", id)
	}
	ty, err := d.lookup.Get(id)
	if err != nil {
		return "", err
	}
	def := ty.Def
	switch {
	case def.IsComposite:
		fields := def.Composite.Fields
		if len(fields) == 1 {
			return d.decode(dec, fields[0].Type.Int64(), depth+1)
		}
		parts := make([]string, len(fields))
		for i, field := range fields {
			if parts[i], err = d.decode(dec, field.Type.Int64(), depth+1); err != nil {
				return "", err
			}
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	case def.IsTuple:
		if len(def.Tuple) == 1 {
			return d.decode(dec, def.Tuple[0].Int64(), depth+1)
		}
		parts := make([]string, len(def.Tuple))
		for i, elem := range def.Tuple {
			if parts[i], err = d.decode(dec, elem.Int64(), depth+1); err != nil {
				return "", err
			}
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	case def.IsVariant:
		index, err := dec.ReadOneByte()
		if err != nil {
			return "", err
		}
		for _, variant := range def.Variant.Variants {
			if byte(variant.Index) != index {
				continue
			}
			if len(variant.Fields) == 0 {
				return string(variant.Name), nil
			}
			parts := make([]string, len(variant.Fields))
			for i, field := range variant.Fields {
				if parts[i], err = d.decode(dec, field.Type.Int64(), depth+1); err != nil {
					return "", err
				}
			}
			return string(variant.Name) + "(" + strings.Join(parts, ", ") + ")", nil
		}
		return "", fmt.Errorf("no alternative with index %d in type %d", index, id)
	case def.IsSequence:
		n, err := dec.length(1)
		if err != nil {
			return "", err
		}
		return d.decodeElements(dec, def.Sequence.Type.Int64(), n, depth)
	case def.IsArray:
		return d.decodeElements(dec, def.Array.Type.Int64(), int(def.Array.Len), depth)
	case def.IsCompact:
		n, err := dec.DecodeUintCompact()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	case def.IsPrimitive:
		return decodePrimitive(dec, def.Primitive.Si0TypeDefPrimitive)
	case def.IsBitSequence:
		n, err := dec.length(8)
		if err != nil {
			return "", err
		}
		bz := make([]byte, (n+7)/8)
		if err := dec.Read(bz); err != nil {
			return "", err
		}
		var sb strings.Builder
		sb.WriteString("0b")
		for i := 0; i < n; i++ {
			if bz[i/8]&(1<<(i%8)) != 0 {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		return sb.String(), nil
	}
	return "", fmt.Errorf("type %d has an unsupported definition", id)
}

func (d *Decoder) decodeElements(dec *input, elemType int64, count int, depth int) (string, error) {
	if isByte(d.lookup, elemType) {
		bz := make([]byte, count)
		if err := dec.Read(bz); err != nil {
			return "", err
		}
		return hex.Encode(bz), nil
	}
	parts := make([]string, count)
	for i := 0; i < count; i++ {
		var err error
		if parts[i], err = d.decode(dec, elemType, depth+1); err != nil {
			return "", err
		}
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

func readLittleEndian(dec *input, size int, signed bool) (*big.Int, error) {
	bz := make([]byte, size)
	if err := dec.Read(bz); err != nil {
		return nil, err
	}
	// big endian for big.Int
	for i, j := 0, len(bz)-1; i < j; i, j = i+1, j-1 {
		bz[i], bz[j] = bz[j], bz[i]
	}
	n := new(big.Int).SetBytes(bz)
	if signed && size > 0 && bz[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(size*8)))
	}
	return n, nil
}

func decodePrimitive(dec *input, prim types.Si0TypeDefPrimitive) (string, error) {
	switch prim {
	case types.IsBool:
		b, err := dec.ReadOneByte()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%t", b != 0), nil
	case types.IsStr:
		n, err := dec.length(1)
		if err != nil {
			return "", err
		}
		bz := make([]byte, n)
		if err := dec.Read(bz); err != nil {
			return "", err
		}
		return Quote(string(bz)), nil
	case types.IsChar:
		n, err := readLittleEndian(dec, 4, false)
		if err != nil {
			return "", err
		}
		r := rune(n.Int64())
		if !utf8.ValidRune(r) {
			return "", fmt.Errorf("invalid char %d", n.Int64())
		}
		return Quote(string(r)), nil
	}
	bits, signed, ok := integerWidth(prim)
	if !ok {
		return "", fmt.Errorf("unsupported primitive %s", primitiveName(prim))
	}
	n, err := readLittleEndian(dec, bits/8, signed)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

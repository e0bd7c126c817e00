// Package hex handles the 0x prefixed hex that substrate nodes use for bytes.
package hex

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Hex renders and parses with a 0x prefix
type Hex []byte

// Encode returns bz as 0x prefixed hex
func Encode(bz []byte) string {
	return "0x" + hex.EncodeToString(bz)
}

// IsPrefixed reports whether s is meant as hex rather than text
func IsPrefixed(s string) bool {
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

// Decode accepts hex with or without a 0x prefix, optionally quoted.
func Decode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	if IsPrefixed(s) {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd number of hex digits in %q", s)
	}
	return hex.DecodeString(s)
}

func (h Hex) String() string {
	return Encode(h)
}

// Bare renders without the prefix
func (h Hex) Bare() string {
	return hex.EncodeToString(h)
}

func (h Hex) Bytes() []byte {
	return []byte(h)
}

func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hex) UnmarshalJSON(data []byte) error {
	return h.UnmarshalText(data)
}

func (h Hex) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hex) UnmarshalText(data []byte) error {
	bz, err := Decode(string(data))
	if err != nil {
		return err
	}
	*h = bz
	return nil
}

package address

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/vedhavyas/go-subkey/v2"
)

// Address is an SS58 encoded account
type Address string

// Generic substrate prefix, used by development chains
const DefaultPrefix uint16 = 42

type AddressBuilder struct {
	chainPrefix uint16
}

func NewAddressBuilder(chainPrefix uint16) AddressBuilder {
	return AddressBuilder{chainPrefix: chainPrefix}
}

// GetAddressFromPublicKey returns an Address given a public key
func (ab AddressBuilder) GetAddressFromPublicKey(publicKeyBytes []byte) (Address, error) {
	if len(publicKeyBytes) == 33 {
		// drop address identifier
		publicKeyBytes = publicKeyBytes[1:]
	}
	if len(publicKeyBytes) != 32 {
		return Address(""), fmt.Errorf("invalid public key, expecting %d bytes but got %d", 32, len(publicKeyBytes))
	}
	addr := subkey.SS58Encode(publicKeyBytes, ab.chainPrefix)
	return Address(addr), nil
}

// DecodeBytes returns the 32 byte account of an SS58 address, ignoring its prefix.
func DecodeBytes(addr Address) ([]byte, error) {
	decodedVal := base58.Decode(string(addr))
	if len(decodedVal) < 35 {
		return nil, fmt.Errorf("address %s is too short", addr)
	}
	return last32DropChecksum(decodedVal), nil
}

func DecodeMulti(addr Address) (types.MultiAddress, error) {
	account, err := DecodeBytes(addr)
	if err != nil {
		return types.MultiAddress{}, err
	}
	newAddr, err := types.NewMultiAddressFromAccountID(account)
	if err != nil {
		return types.MultiAddress{}, fmt.Errorf("invalid address %s: %v", addr, err)
	}
	return newAddr, nil
}

// Decoding address without checking the checksum
func last32DropChecksum(decoded []byte) []byte {
	// drop the 2 checksum bytes
	decoded = decoded[:len(decoded)-2]
	// take the last 32 bytes (ignores the 1-2 byte prefix)
	return decoded[len(decoded)-32:]
}

func Decode(addr Address) (*types.AccountID, error) {
	account, err := DecodeBytes(addr)
	if err != nil {
		return &types.AccountID{}, err
	}
	newAddr, err := types.NewAccountID(account)
	if err != nil {
		return &types.AccountID{}, fmt.Errorf("invalid address %s: %v", addr, err)
	}
	return newAddr, nil
}

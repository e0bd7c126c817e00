package signer

import (
	"fmt"
	"strings"

	"github.com/cordialsys/xcall/chain/substrate/address"
	"github.com/vedhavyas/go-subkey/v2"
	"github.com/vedhavyas/go-subkey/v2/sr25519"
)

// Signer is an sr25519 key derived from a secret URI such as "//Alice" or "<mnemonic>//hard/soft".
type Signer struct {
	keyPair subkey.KeyPair
	Address address.Address
}

func New(suri string, prefix uint16) (*Signer, error) {
	suri = strings.TrimSpace(suri)
	if suri == "" {
		return nil, fmt.Errorf("empty secret uri")
	}
	keyPair, err := subkey.DeriveKeyPair(sr25519.Scheme{}, suri)
	if err != nil {
		return nil, fmt.Errorf("could not derive key from secret uri: %w", err)
	}
	addr, err := address.NewAddressBuilder(prefix).GetAddressFromPublicKey(keyPair.Public())
	if err != nil {
		return nil, err
	}
	return &Signer{keyPair: keyPair, Address: addr}, nil
}

func (s *Signer) PublicKey() []byte {
	return s.keyPair.Public()
}

// Sign returns a 64 byte sr25519 signature. Signatures are not deterministic.
func (s *Signer) Sign(payload []byte) ([]byte, error) {
	return s.keyPair.Sign(payload)
}

func (s *Signer) Verify(payload []byte, signature []byte) bool {
	return s.keyPair.Verify(payload, signature)
}

package tx_input

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/extrinsic"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/extrinsic/extensions"
	"github.com/cordialsys/xcall/chain/substrate/registry"
	"github.com/sirupsen/logrus"
)

// Metadata is the part of the runtime metadata needed to assemble a signing payload.
type Metadata struct {
	SignedExtensions []extensions.SignedExtensionName `json:"signed_extensions"`
}

// ParseMeta collects the signed extensions of the runtime, in the order the payload carries them.
func ParseMeta(reg *registry.Registry) (Metadata, error) {
	newMeta := Metadata{}
	for _, signedExtension := range reg.Metadata().AsMetadataV14.Extrinsic.SignedExtensions {
		name := string(signedExtension.Identifier)
		signedExtensionType, err := reg.Lookup().Get(signedExtension.Type.Int64())
		if err != nil {
			return newMeta, fmt.Errorf("signed extension type '%d' is not defined", signedExtension.Type.Int64())
		}
		if len(signedExtensionType.Path) > 0 {
			name = string(signedExtensionType.Path[len(signedExtensionType.Path)-1])
		}
		newMeta.SignedExtensions = append(newMeta.SignedExtensions, extensions.SignedExtensionName(name))
	}
	return newMeta, nil
}

// NewCall joins already encoded arguments behind the call index.
func NewCall(index types.CallIndex, encodedArgs ...[]byte) types.Call {
	var a []byte
	for _, arg := range encodedArgs {
		a = append(a, arg...)
	}
	return types.Call{CallIndex: index, Args: a}
}

var LocalPayloadMutatorFns = map[extensions.SignedExtensionName]extrinsic.PayloadMutatorFn{
	// extensions that carry no signed data
	"SubtensorSignedExtension":   func(payload *extrinsic.Payload) {},
	"CommitmentsSignedExtension": func(payload *extrinsic.Payload) {},
	"CheckNonZeroSender":         func(payload *extrinsic.Payload) {},
	"CheckWeight":                func(payload *extrinsic.Payload) {},
}

// Replaces "github.com/centrifuge/go-substrate-rpc-client/v4/extrinsic".createPayload
func CreatePayload(meta *Metadata, encodedCall []byte) (*extrinsic.Payload, error) {
	payload := &extrinsic.Payload{
		EncodedCall: encodedCall,
	}

	for _, signedExtension := range meta.SignedExtensions {
		payloadMutatorFn, ok := extrinsic.PayloadMutatorFns[signedExtension]
		if !ok {
			payloadMutatorFn, ok = LocalPayloadMutatorFns[signedExtension]
			if !ok {
				logrus.WithFields(logrus.Fields{
					"extension": signedExtension,
				}).Warn("signed extension is not supported, transaction may not be accepted")
				continue
			}
		}
		payloadMutatorFn(payload)
	}

	return payload, nil
}

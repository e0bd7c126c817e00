package api

import "github.com/centrifuge/go-substrate-rpc-client/v4/types"

// AccountInfoMinimal contains a subset of what a parachain may return in order to maximize decoding interoperability.
// To see other fields, see types.AccountInfo
type AccountInfoMinimal struct {
	Nonce       types.U32
	Consumers   types.U32
	Providers   types.U32
	Sufficients types.U32
	Data        struct {
		Free types.U128
		// skip fields after this point as we don't need them
	}
}

// RpcError is the error object of a json-rpc response
type RpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

package testutil

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
)

func FromHex(s string) []byte {
	bz, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		panic(err)
	}
	return bz
}

func JsonPrint(a any) {
	bz, _ := json.MarshalIndent(a, "", "  ")
	fmt.Println(string(bz))
}

func Ref[T any](s T) *T {
	return &s
}

func mustMarshalJson(data any) string {
	bz, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return string(bz)
}

// AsRpcResult wraps a value into a json-rpc result
func AsRpcResult(data any) string {
	return fmt.Sprintf(`{"jsonrpc":"2.0","result":%s,"id":1}`, mustMarshalJson(data))
}

// AsScaleRpcResult wraps the SCALE encoding of a value, as hex, into a json-rpc result
func AsScaleRpcResult(data any) string {
	s, err := codec.EncodeToHex(data)
	if err != nil {
		panic(err)
	}
	return AsRpcResult(s)
}

func AsRpcError(code int, message string, data any) string {
	return fmt.Sprintf(`{"jsonrpc":"2.0","error":{"code":%d,"message":%s,"data":%s},"id":1}`, code, mustMarshalJson(message), mustMarshalJson(data))
}

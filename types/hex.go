package types

import "github.com/ethereum/go-ethereum/common/hexutil"

// toHex encodes b as 0x-prefixed lowercase hex.
func toHex(b []byte) []byte {
	return []byte(hexutil.Encode(b))
}

// fromHex decodes 0x-prefixed hex, input without the prefix is rejected.
func fromHex(src []byte) ([]byte, error) {
	return hexutil.Decode(string(src))
}

// Package crypto provides the single hash primitive the interpreter needs:
// Keccak-256, used by SHA3, EXTCODEHASH, and CREATE/CREATE2 address
// derivation.
package crypto

import (
	"github.com/evmexec/evmexec/core/types"
	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Word hashes the concatenation of data into a Word.
func Keccak256Word(data ...[]byte) types.Word {
	return types.BytesToWord(Keccak256(data...))
}

// EmptyCodeHash is keccak256("") -- the canonical hash reported for
// absent or zero-length code.
var EmptyCodeHash = types.BytesToWord(Keccak256())

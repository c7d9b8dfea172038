// Package harness loads and runs the evm.json test-vector format against
// the interpreter, and reports pass/fail per the CLI's exit code contract.
package harness

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/evmexec/evmexec/core/types"
	"github.com/holiman/uint256"
)

// Vector is one test object from the evm.json array.
type Vector struct {
	Name   string                 `json:"name"`
	Hint   string                 `json:"hint"`
	Code   CodeSpec               `json:"code"`
	Tx     *TxSpec                `json:"tx"`
	Block  *BlockSpec             `json:"block"`
	State  map[string]AccountSpec `json:"state"`
	Expect ExpectSpec             `json:"expect"`
}

type CodeSpec struct {
	Bin string `json:"bin"`
	Asm string `json:"asm"`
}

type TxSpec struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Origin   string `json:"origin"`
	GasPrice string `json:"gasprice"`
	Value    string `json:"value"`
	Data     string `json:"data"`
}

type BlockSpec struct {
	ChainID    string `json:"chainId"`
	Number     string `json:"number"`
	Coinbase   string `json:"coinbase"`
	Miner      string `json:"miner"`
	Timestamp  string `json:"timestamp"`
	GasLimit   string `json:"gasLimit"`
	BaseFee    string `json:"baseFee"`
	PrevRandao string `json:"prevRandao"`
	Difficulty string `json:"difficulty"`
	GasUsed    string `json:"gasUsed"`
}

type AccountSpec struct {
	Balance  string            `json:"balance"`
	Nonce    string            `json:"nonce"`
	Code     *CodeSpec         `json:"code"`
	Bytecode string            `json:"bytecode"`
	Storage  map[string]string `json:"storage"`
}

type ExpectSpec struct {
	Success bool      `json:"success"`
	Stack   []string  `json:"stack"`
	Logs    []LogSpec `json:"logs"`
	Return  string    `json:"return"`
}

type LogSpec struct {
	Address string   `json:"address"`
	Data    string   `json:"data"`
	Topics  []string `json:"topics"`
}

// LoadFile reads and decodes an evm.json file into its ordered test vectors.
func LoadFile(path string) ([]Vector, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("harness: read %s: %w", path, err)
	}
	var vectors []Vector
	if err := json.Unmarshal(raw, &vectors); err != nil {
		return nil, fmt.Errorf("harness: decode %s: %w", path, err)
	}
	return vectors, nil
}

// parseU256 parses a hex string (with or without 0x, possibly empty) into a
// big.Int via uint256, the fixed-width type used at the JSON boundary.
func parseU256(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}
	v, err := uint256.FromHex(normalizeHex(s))
	if err != nil {
		return nil, fmt.Errorf("harness: invalid hex value %q: %w", s, err)
	}
	return v.ToBig(), nil
}

// parseWord parses a hex string into a 32-byte word via uint256.
func parseWord(s string) (types.Word, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.Word{}, nil
	}
	v, err := uint256.FromHex(normalizeHex(s))
	if err != nil {
		return types.Word{}, fmt.Errorf("harness: invalid hex value %q: %w", s, err)
	}
	return types.Word(v.Bytes32()), nil
}

func parseAddress(s string) types.Address {
	return types.HexToAddress(s)
}

func parseBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("harness: invalid hex bytes %q: %w", s, err)
	}
	return b, nil
}

// normalizeHex puts s in the form uint256.FromHex accepts: 0x-prefixed and
// without leading zero digits. The JSON format allows hex strings to omit
// the prefix and to carry leading zeros (e.g. "0x03" or a 64-digit word).
func normalizeHex(s string) string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	return "0x" + s
}

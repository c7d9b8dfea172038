package harness

import (
	"fmt"
	"math"

	"github.com/evmexec/evmexec/core/state"
	"github.com/evmexec/evmexec/core/types"
	"github.com/evmexec/evmexec/core/vm"
	"github.com/evmexec/evmexec/log"
)

var harnessLog = log.Default().Module("harness")

// Result is the outcome of running one Vector.
type Result struct {
	Name   string
	Passed bool
	Diffs  []string
	Fatal  error
}

// Summary aggregates a full evm.json run.
type Summary struct {
	Results []Result
}

// AllPassed reports whether every vector in the summary passed.
func (s Summary) AllPassed() bool {
	for _, r := range s.Results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// RunAll executes every vector in order and collects one Result per vector.
func RunAll(vectors []Vector) Summary {
	var summary Summary
	for _, v := range vectors {
		summary.Results = append(summary.Results, RunOne(v))
	}
	return summary
}

// RunOne builds the frame and world state described by one vector, runs it,
// and compares the result against its expect block.
func RunOne(v Vector) Result {
	code, err := parseBytes(v.Code.Bin)
	if err != nil {
		return Result{Name: v.Name, Fatal: err}
	}

	st := state.New()
	for addrHex, acc := range v.State {
		addr := parseAddress(addrHex)
		balance, err := parseU256(acc.Balance)
		if err != nil {
			return Result{Name: v.Name, Fatal: err}
		}
		var accCode []byte
		switch {
		case acc.Code != nil:
			accCode, err = parseBytes(acc.Code.Bin)
		case acc.Bytecode != "":
			accCode, err = parseBytes(acc.Bytecode)
		}
		if err != nil {
			return Result{Name: v.Name, Fatal: err}
		}
		st.CreateAccount(addr, accCode, balance)
		if acc.Nonce != "" {
			nonce, err := parseU256(acc.Nonce)
			if err != nil {
				return Result{Name: v.Name, Fatal: err}
			}
			st.SetNonce(addr, nonce.Uint64())
		}
		for keyHex, valHex := range acc.Storage {
			key, err := parseWord(keyHex)
			if err != nil {
				return Result{Name: v.Name, Fatal: err}
			}
			val, err := parseWord(valHex)
			if err != nil {
				return Result{Name: v.Name, Fatal: err}
			}
			st.StorageStore(addr, key, val)
		}
	}

	call := vm.CallContext{}
	if v.Tx != nil {
		call.Sender = parseAddress(v.Tx.From)
		call.Recipient = parseAddress(v.Tx.To)
		call.CodeTarget = call.Recipient
		call.Origin = parseAddress(v.Tx.Origin)
		gasPrice, err := parseU256(v.Tx.GasPrice)
		if err != nil {
			return Result{Name: v.Name, Fatal: err}
		}
		call.GasPrice = gasPrice
		value, err := parseU256(v.Tx.Value)
		if err != nil {
			return Result{Name: v.Name, Fatal: err}
		}
		call.Value = value
		data, err := parseBytes(v.Tx.Data)
		if err != nil {
			return Result{Name: v.Name, Fatal: err}
		}
		call.Calldata = data
	}
	st.EnsureAccount(call.Recipient)
	st.SetCode(call.Recipient, code)

	block, err := buildBlockContext(v.Block)
	if err != nil {
		return Result{Name: v.Name, Fatal: err}
	}

	machine := vm.NewMachine(st, block)
	frame := vm.NewFrame(code, call, math.MaxUint64)
	harnessLog.Debug("running vector", "name", v.Name)
	outcome := machine.Run(frame)

	return compare(v, outcome)
}

func buildBlockContext(b *BlockSpec) (vm.BlockContext, error) {
	var block vm.BlockContext
	if b == nil {
		return block, nil
	}
	var err error
	chainID, err := parseU256(b.ChainID)
	if err != nil {
		return block, err
	}
	block.ChainID = chainID.Uint64()
	if block.Number, err = parseU256(b.Number); err != nil {
		return block, err
	}
	if block.Timestamp, err = parseU256(b.Timestamp); err != nil {
		return block, err
	}
	if block.GasLimit, err = parseU256(b.GasLimit); err != nil {
		return block, err
	}
	if block.BaseFee, err = parseU256(b.BaseFee); err != nil {
		return block, err
	}
	if block.Difficulty, err = parseU256(b.Difficulty); err != nil {
		return block, err
	}

	coinbaseHex := b.Coinbase
	if coinbaseHex == "" {
		coinbaseHex = b.Miner
	}
	if coinbaseHex != "" {
		addr := parseAddress(coinbaseHex)
		block.Coinbase = &addr
	}

	// PREVRANDAO falls back to DIFFICULTY when absent.
	randaoHex := b.PrevRandao
	if randaoHex == "" {
		randaoHex = b.Difficulty
	}
	if randaoHex != "" {
		w, err := parseWord(randaoHex)
		if err != nil {
			return block, err
		}
		block.PrevRandao = &w
	}
	return block, nil
}

func compare(v Vector, outcome vm.RunResult) Result {
	res := Result{Name: v.Name, Passed: true}

	if outcome.Success != v.Expect.Success {
		res.Passed = false
		res.Diffs = append(res.Diffs, fmt.Sprintf("success: expected %v, got %v", v.Expect.Success, outcome.Success))
	}

	wantStack := make([]types.Word, len(v.Expect.Stack))
	for i, s := range v.Expect.Stack {
		w, err := parseWord(s)
		if err != nil {
			res.Passed = false
			res.Diffs = append(res.Diffs, err.Error())
			continue
		}
		wantStack[i] = w
	}
	if !wordsEqual(wantStack, outcome.Stack) {
		res.Passed = false
		res.Diffs = append(res.Diffs, fmt.Sprintf("stack: expected %v, got %v", hexWords(wantStack), hexWords(outcome.Stack)))
	}

	wantReturn, err := parseBytes(v.Expect.Return)
	if err != nil {
		res.Passed = false
		res.Diffs = append(res.Diffs, err.Error())
	} else if !bytesEqual(wantReturn, outcome.ReturnData) {
		res.Passed = false
		res.Diffs = append(res.Diffs, fmt.Sprintf("return: expected %x, got %x", wantReturn, outcome.ReturnData))
	}

	if diffs := compareLogs(v.Expect.Logs, outcome.Logs); len(diffs) > 0 {
		res.Passed = false
		res.Diffs = append(res.Diffs, diffs...)
	}

	return res
}

func compareLogs(want []LogSpec, got []*types.Log) []string {
	var diffs []string
	if len(want) != len(got) {
		diffs = append(diffs, fmt.Sprintf("logs: expected %d entries, got %d", len(want), len(got)))
		return diffs
	}
	for i, w := range want {
		g := got[i]
		if parseAddress(w.Address) != g.Address {
			diffs = append(diffs, fmt.Sprintf("log[%d].address mismatch", i))
		}
		wantData, err := parseBytes(w.Data)
		if err != nil {
			diffs = append(diffs, err.Error())
			continue
		}
		if !bytesEqual(wantData, g.Data) {
			diffs = append(diffs, fmt.Sprintf("log[%d].data mismatch", i))
		}
		if len(w.Topics) != len(g.Topics) {
			diffs = append(diffs, fmt.Sprintf("log[%d].topics count mismatch", i))
			continue
		}
		for j, topicHex := range w.Topics {
			wt, err := parseWord(topicHex)
			if err != nil {
				diffs = append(diffs, err.Error())
				continue
			}
			if wt != g.Topics[j] {
				diffs = append(diffs, fmt.Sprintf("log[%d].topics[%d] mismatch", i, j))
			}
		}
	}
	return diffs
}

func wordsEqual(a, b []types.Word) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hexWords(ws []types.Word) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Hex()
	}
	return out
}

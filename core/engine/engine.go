// Package engine runs ordered command lists against a shared byte-buffer
// state. Each command targets a registered contract (or a plain value
// transfer), draws its arguments from state slots and writes its return
// buffer back into a state slot. Commands execute strictly in list order;
// the first failure aborts the run unless the command carries FlagTry.
package engine

import (
	"errors"

	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/storage"
)

const GasCommand = 2800
const GasNativeTransfer = 9000
const MaxStateSlots = 256

var ErrUnknownContract = errors.New("unknown contract")
var ErrUnknownMethod = errors.New("unknown method")
var ErrBadSlot = errors.New("state slot out of range")
var ErrBadArgs = errors.New("illegal call arguments")
var ErrInsufficientGas = errors.New("insufficient gas")
var ErrDelegateDisabled = errors.New("delegate calls disabled")

// Env is the per-run execution environment. All state effects go through
// Env.S; the run's caller discards or merges that slice afterwards.
type Env struct {
	S             *storage.Slice
	Origin        state.AddressType
	Self          state.AddressType
	Gas           uint64
	AllowDelegate bool
	Callback      *state.ExecutionCallback
}

// Contract handles calls dispatched to one target address.
type Contract interface {
	Call(env *Env, method byte, value uint64, args [][]byte) ([]byte, error)
}

// Library handles delegate-flagged calls. Libraries never receive value
// and run with the full authority of the engine owner, which is why
// Env.AllowDelegate gates them.
type Library interface {
	CallDelegate(env *Env, method byte, args [][]byte) ([]byte, error)
}

type Engine struct {
	contracts map[state.AddressType]Contract
	libraries map[state.AddressType]Library
}

func NewEngine() *Engine {
	return &Engine{
		contracts: make(map[state.AddressType]Contract),
		libraries: make(map[state.AddressType]Library),
	}
}

func (e *Engine) Register(addr state.AddressType, c Contract) {
	e.contracts[addr] = c
}

func (e *Engine) RegisterLibrary(addr state.AddressType, l Library) {
	e.libraries[addr] = l
}

func (e *Engine) dispatch(env *Env, c *Command, args [][]byte) ([]byte, error) {
	if c.Flags&FlagDelegate != 0 {
		if !env.AllowDelegate {
			return nil, ErrDelegateDisabled
		}
		lib, ok := e.libraries[c.Target]
		if !ok {
			return nil, ErrUnknownContract
		}
		return lib.CallDelegate(env, c.Method, args)
	}
	if c.Value != 0 {
		if env.Gas < GasNativeTransfer {
			return nil, ErrInsufficientGas
		}
		env.Gas -= GasNativeTransfer
		err := state.TransferNative(env.S, env.Self, c.Target, c.Value, env.Callback)
		if err != nil {
			return nil, err
		}
	}
	ct, ok := e.contracts[c.Target]
	if !ok {
		// Plain value transfers may target any address; anything else
		// needs a registered contract.
		if c.Method == 0 && len(args) == 0 {
			return nil, nil
		}
		return nil, ErrUnknownContract
	}
	return ct.Call(env, c.Method, c.Value, args)
}

// Run executes commands in order and returns the final state buffers.
func (e *Engine) Run(env *Env, commands [][]byte, st [][]byte) ([][]byte, error) {
	st = append([][]byte(nil), st...)
	for _, raw := range commands {
		c, err := DecodeCommand(raw)
		if err != nil {
			return nil, err
		}
		if env.Gas < GasCommand {
			return nil, ErrInsufficientGas
		}
		env.Gas -= GasCommand
		args := make([][]byte, len(c.In))
		for i, idx := range c.In {
			if int(idx) >= len(st) {
				return nil, ErrBadSlot
			}
			args[i] = st[idx]
		}
		ret, err := e.dispatch(env, c, args)
		if err != nil {
			if err == ErrInsufficientGas || c.Flags&FlagTry == 0 {
				return nil, err
			}
			ret = nil
		}
		if c.Out != OutNone {
			switch {
			case int(c.Out) < len(st):
				st[c.Out] = ret
			case int(c.Out) == len(st) && len(st) < MaxStateSlots:
				st = append(st, ret)
			default:
				return nil, ErrBadSlot
			}
		}
	}
	return st, nil
}

package router

import (
	"github.com/vrouter-project/vrouter/core/engine"
	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/storage"
)

// Engine is the opaque command executor. The router never inspects command
// contents; it only relies on Run being all-or-nothing over env.S.
type Engine interface {
	Run(env *engine.Env, commands [][]byte, st [][]byte) ([][]byte, error)
}

type Router struct {
	Addr          state.AddressType
	AllowDelegate bool
	Callback      *state.ExecutionCallback
	eng           Engine
	lock          EntryLock
}

func NewRouter(addr state.AddressType, eng Engine, allowDelegate bool) *Router {
	return &Router{
		Addr:          addr,
		AllowDelegate: allowDelegate,
		eng:           eng,
	}
}

// Execute runs one guarded invocation: escrow the approved token moves, run
// the script, verify the postconditions and the native balance, then commit.
// Every failure leaves s untouched.
//
// The native balance snapshot is taken before the attached value is credited,
// so the script must route all attached value out of the router or the call
// fails with ErrNativeBalanceMismatch.
func (r *Router) Execute(s *storage.Slice, caller state.AddressType, value uint64, gasLimit uint64, commands [][]byte, st [][]byte, approvals []TokenMove, checks []PostconditionCheck) ([][]byte, error) {
	if err := r.lock.Acquire(); err != nil {
		return nil, err
	}
	defer r.lock.Release()
	fork := storage.ForkSlice(s)
	before := state.GetAccount(fork, r.Addr).Balance
	if value > 0 {
		if err := state.TransferNative(fork, caller, r.Addr, value, r.Callback); err != nil {
			return nil, err
		}
	}
	if err := stageFunds(fork, r.Addr, caller, approvals, r.Callback); err != nil {
		return nil, err
	}
	env := &engine.Env{
		S:             fork,
		Origin:        caller,
		Self:          r.Addr,
		Gas:           gasLimit,
		AllowDelegate: r.AllowDelegate,
		Callback:      r.Callback,
	}
	out, err := r.eng.Run(env, commands, st)
	if err != nil {
		return nil, err
	}
	if err := verifyChecks(fork, checks); err != nil {
		return nil, err
	}
	after := state.GetAccount(fork, r.Addr).Balance
	if err := Check(after == before, ErrNativeBalanceMismatch); err != nil {
		return nil, err
	}
	fork.Merge()
	return out, nil
}

// Package core wires the router, engine and state into a runnable node: it
// owns the highest state slice, verifies signed requests, enforces nonces,
// keeps execution receipts and checkpoints state to disk.
package core

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/vrouter-project/vrouter/core/engine"
	"github.com/vrouter-project/vrouter/core/router"
	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/core/token"
	"github.com/vrouter-project/vrouter/storage"
)

var ErrSignatureMismatch = errors.New("signature mismatch")
var ErrNonceMismatch = errors.New("nonce mismatch")
var ErrDuplicateRequest = errors.New("duplicate request")
var ErrGasLimitTooHigh = errors.New("gas limit above cap")
var ErrFaucetDisabled = errors.New("faucet disabled")

type TransferRecord struct {
	Token state.AddressType `json:"token"`
	From  state.AddressType `json:"from"`
	To    state.AddressType `json:"to"`
	Value uint64            `json:"value"`
}

type Receipt struct {
	Hash      state.HashType
	Caller    state.AddressType
	Success   bool
	Error     string
	Output    [][]byte
	Transfers []TransferRecord
	Time      int64
}

type RouterNode struct {
	mut       sync.Mutex
	s         *storage.Slice
	r         *router.Router
	eng       *engine.Engine
	receipts  *cache.Cache
	seen      *cache.Cache
	config    RouterNodeConfig
	transfers []TransferRecord
}

func NewRouterNode(config RouterNodeConfig, genesis *GenesisAlloc) (*RouterNode, error) {
	n := &RouterNode{
		s:        storage.EmptySlice(),
		eng:      engine.NewEngine(),
		receipts: cache.New(time.Hour, time.Minute*10),
		seen:     cache.New(time.Hour, time.Minute*10),
		config:   config,
	}
	routerAddr, err := config.RouterAddr()
	if err != nil {
		return nil, fmt.Errorf("failed to set up node: %v", err)
	}
	n.r = router.NewRouter(routerAddr, n.eng, config.AllowDelegate)
	n.r.Callback = &state.ExecutionCallback{Transfer: n.recordTransfer}
	n.eng.Register(routerAddr, n.r.AsContract())
	n.eng.RegisterLibrary(NamedAddress("vrouter.lib.math"), engine.MathLib{})
	loaded := false
	if config.Checkpoint.Path != "" {
		if _, err := os.Stat(config.Checkpoint.Path); err == nil {
			f, err := os.Open(config.Checkpoint.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to set up node: %v", err)
			}
			base := storage.EmptySlice()
			err = base.LoadFile(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to set up node: %v", err)
			}
			n.s = storage.ForkSlice(base)
			loaded = true
		}
	}
	if genesis != nil {
		if !loaded {
			if err := genesis.Apply(n.s); err != nil {
				return nil, fmt.Errorf("failed to set up node: %v", err)
			}
		}
		for _, tk := range genesis.TokenAddrs() {
			n.RegisterToken(tk)
		}
	}
	return n, nil
}

func (n *RouterNode) RouterAddress() state.AddressType {
	return n.r.Addr
}

// RegisterToken exposes one token ledger to scripts.
func (n *RouterNode) RegisterToken(tk state.AddressType) {
	n.eng.Register(tk, &engine.TokenContract{Token: tk})
}

func (n *RouterNode) recordTransfer(_ *storage.Slice, tk state.AddressType, from state.AddressType, to state.AddressType, value uint64) {
	n.transfers = append(n.transfers, TransferRecord{Token: tk, From: from, To: to, Value: value})
}

// SubmitRequest verifies and executes one signed request. A non-nil error
// means the request was rejected before execution (bad signature, nonce or
// gas); execution failures come back inside the receipt with every state
// effect rolled back.
func (n *RouterNode) SubmitRequest(rq *router.Request) (*Receipt, error) {
	if !rq.VerifySig() {
		return nil, ErrSignatureMismatch
	}
	if n.config.GasCap != 0 && rq.GasLimit > n.config.GasCap {
		return nil, ErrGasLimitTooHigh
	}
	h := rq.Hash()
	hk := string(h[:])
	caller := rq.Caller()
	n.mut.Lock()
	defer n.mut.Unlock()
	if _, ok := n.seen.Get(hk); ok {
		return nil, ErrDuplicateRequest
	}
	ai := state.GetAccount(n.s, caller)
	if ai.Nonce != rq.Nonce {
		return nil, ErrNonceMismatch
	}
	// the nonce is consumed whether or not execution succeeds
	ai.Nonce++
	state.SetAccount(n.s, caller, ai)
	n.seen.SetDefault(hk, true)
	n.transfers = nil
	out, err := n.r.Execute(n.s, caller, rq.Value, rq.GasLimit, rq.Commands, rq.State, rq.Approvals, rq.Checks)
	rec := &Receipt{
		Hash:      h,
		Caller:    caller,
		Success:   err == nil,
		Output:    out,
		Transfers: n.transfers,
		Time:      time.Now().Unix(),
	}
	if err != nil {
		rec.Error = err.Error()
		rec.Transfers = nil
	}
	n.transfers = nil
	n.receipts.SetDefault(hk, rec)
	return rec, nil
}

func (n *RouterNode) GetReceipt(h state.HashType) (*Receipt, bool) {
	v, ok := n.receipts.Get(string(h[:]))
	if !ok {
		return nil, false
	}
	return v.(*Receipt), true
}

func (n *RouterNode) GetAccountInfo(addr state.AddressType) state.AccountInfo {
	n.mut.Lock()
	defer n.mut.Unlock()
	return state.GetAccount(n.s, addr)
}

func (n *RouterNode) GetTokenBalance(tk state.AddressType, owner state.AddressType) uint64 {
	n.mut.Lock()
	defer n.mut.Unlock()
	return token.BalanceOf(n.s, tk, owner)
}

func (n *RouterNode) GetAllowance(tk state.AddressType, owner state.AddressType, spender state.AddressType) uint64 {
	n.mut.Lock()
	defer n.mut.Unlock()
	return token.Allowance(n.s, tk, owner, spender)
}

// Faucet mints native funds on development nodes.
func (n *RouterNode) Faucet(addr state.AddressType, amount uint64) error {
	if !n.config.Faucet {
		return ErrFaucetDisabled
	}
	n.mut.Lock()
	defer n.mut.Unlock()
	ai := state.GetAccount(n.s, addr)
	if ai.Balance+amount < ai.Balance {
		return state.ErrBalanceOverflow
	}
	ai.Balance += amount
	state.SetAccount(n.s, addr, ai)
	return nil
}

// SaveCheckpoint flattens the current state into the checkpoint file.
func (n *RouterNode) SaveCheckpoint() error {
	if n.config.Checkpoint.Path == "" {
		return errors.New("no checkpoint path configured")
	}
	n.mut.Lock()
	flat := n.s.Flatten()
	n.mut.Unlock()
	tmp := n.config.Checkpoint.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = flat.DumpFile(f)
	f.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp, n.config.Checkpoint.Path)
}

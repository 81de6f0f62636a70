package core

import (
	"crypto/sha256"
	"fmt"

	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/core/token"
	"github.com/vrouter-project/vrouter/storage"
	"github.com/vrouter-project/vrouter/utils/address"
)

type RouterNodeConfig struct {
	RouterAddress string                   `json:"router_address" env:"VROUTER_ROUTER_ADDRESS"`
	AllowDelegate bool                     `json:"allow_delegate" env:"VROUTER_ALLOW_DELEGATE"`
	GasCap        uint64                   `json:"gas_cap" env:"VROUTER_GAS_CAP"`
	Faucet        bool                     `json:"faucet" env:"VROUTER_FAUCET"`
	Checkpoint    storage.CheckpointConfig `json:"checkpoint"`
}

// NamedAddress derives a stable address from a label, for system contracts
// and tokens that have no keypair behind them.
func NamedAddress(label string) state.AddressType {
	return sha256.Sum256([]byte(label))
}

func (c *RouterNodeConfig) RouterAddr() (state.AddressType, error) {
	if c.RouterAddress == "" {
		return NamedAddress("vrouter.router"), nil
	}
	return address.ParseAddr(c.RouterAddress)
}

// GenesisAlloc seeds a fresh node. Token keys may be textual addresses or
// plain labels (resolved via NamedAddress); owner keys must be addresses.
type GenesisAlloc struct {
	Native map[string]uint64            `json:"native"`
	Tokens map[string]map[string]uint64 `json:"tokens"`
}

// TokenAddr resolves a token key: a textual address, or a label hashed
// via NamedAddress.
func TokenAddr(key string) state.AddressType {
	if a, err := address.ParseAddr(key); err == nil {
		return a
	}
	return NamedAddress(key)
}

func (g *GenesisAlloc) TokenAddrs() []state.AddressType {
	res := make([]state.AddressType, 0, len(g.Tokens))
	for key := range g.Tokens {
		res = append(res, TokenAddr(key))
	}
	return res
}

func (g *GenesisAlloc) Apply(s *storage.Slice) error {
	for enc, bal := range g.Native {
		a, err := address.ParseAddr(enc)
		if err != nil {
			return fmt.Errorf("bad genesis address %q: %v", enc, err)
		}
		state.SetAccount(s, a, state.AccountInfo{Balance: bal})
	}
	for key, owners := range g.Tokens {
		tk := TokenAddr(key)
		for enc, bal := range owners {
			a, err := address.ParseAddr(enc)
			if err != nil {
				return fmt.Errorf("bad genesis address %q: %v", enc, err)
			}
			if err := token.Mint(s, tk, a, bal); err != nil {
				return err
			}
		}
	}
	return nil
}

package router

import (
	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/core/token"
	"github.com/vrouter-project/vrouter/storage"
)

// TokenMove is one caller-authorized transfer of Amount units of Token from
// the caller to To, applied before the script runs.
type TokenMove struct {
	Token  state.AddressType `json:"token"`
	Amount uint64            `json:"amount"`
	To     state.AddressType `json:"to"`
}

// stageFunds pulls the approved amounts from the caller, in list order. All
// destinations are validated before the first transfer happens.
func stageFunds(s *storage.Slice, spender state.AddressType, caller state.AddressType, moves []TokenMove, cb *state.ExecutionCallback) error {
	for i := range moves {
		if err := Check(moves[i].To != (state.AddressType{}), ErrZeroAddress); err != nil {
			return err
		}
	}
	for i := range moves {
		m := &moves[i]
		err := token.TransferFrom(s, m.Token, spender, caller, m.To, m.Amount, cb)
		if err != nil {
			return err
		}
	}
	return nil
}

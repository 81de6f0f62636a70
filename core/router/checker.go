package router

import (
	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/core/token"
	"github.com/vrouter-project/vrouter/storage"
)

// PostconditionCheck asserts that after the script ran, Target's balance of
// Token compares to Value under Op. A zero Token address checks the native
// balance.
type PostconditionCheck struct {
	Target state.AddressType `json:"target"`
	Token  state.AddressType `json:"token"`
	Value  uint64            `json:"value"`
	Op     CompareOp         `json:"op"`
}

// verifyChecks evaluates every postcondition in list order and reports the
// first violated one. Read-only.
func verifyChecks(s *storage.Slice, checks []PostconditionCheck) error {
	for i := range checks {
		c := &checks[i]
		var balance uint64
		if c.Token == (state.AddressType{}) {
			balance = state.GetAccount(s, c.Target).Balance
		} else {
			balance = token.BalanceOf(s, c.Token, c.Target)
		}
		ok, err := Evaluate(balance, c.Value, c.Op)
		if err != nil {
			return err
		}
		if err := Check(ok, ErrPostconditionFailed); err != nil {
			return err
		}
	}
	return nil
}

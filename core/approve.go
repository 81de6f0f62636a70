package core

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/core/token"
)

// ApproveRequest is the out-of-band allowance grant: it sets the caller's
// allowance for a spender (normally the router) without running a script.
type ApproveRequest struct {
	SenderPubkey state.PubkeyType
	SenderSig    state.SigType
	Nonce        uint64
	Token        state.AddressType
	Spender      state.AddressType
	Amount       uint64
}

func (ar *ApproveRequest) prepareSignData() []byte {
	buf := make([]byte, state.AddressLen*2+16)
	copy(buf[:state.AddressLen], ar.Token[:])
	copy(buf[state.AddressLen:state.AddressLen*2], ar.Spender[:])
	binary.BigEndian.PutUint64(buf[state.AddressLen*2:state.AddressLen*2+8], ar.Nonce)
	binary.BigEndian.PutUint64(buf[state.AddressLen*2+8:], ar.Amount)
	return buf
}

func (ar *ApproveRequest) Sign(privKey state.PrivkeyType) {
	copy(ar.SenderSig[:], ed25519.Sign(privKey[:], ar.prepareSignData()))
}

func (ar *ApproveRequest) VerifySig() bool {
	return ed25519.Verify(ar.SenderPubkey[:], ar.prepareSignData(), ar.SenderSig[:])
}

func (ar *ApproveRequest) Owner() state.AddressType {
	return state.PubkeyToAddress(ar.SenderPubkey)
}

// SubmitApprove verifies and applies one allowance grant. It shares the
// nonce sequence with execute requests.
func (n *RouterNode) SubmitApprove(ar *ApproveRequest) error {
	if !ar.VerifySig() {
		return ErrSignatureMismatch
	}
	owner := ar.Owner()
	n.mut.Lock()
	defer n.mut.Unlock()
	ai := state.GetAccount(n.s, owner)
	if ai.Nonce != ar.Nonce {
		return ErrNonceMismatch
	}
	ai.Nonce++
	state.SetAccount(n.s, owner, ai)
	token.Approve(n.s, ar.Token, owner, ar.Spender, ar.Amount)
	return nil
}

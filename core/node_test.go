package core

import (
	"crypto/rand"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vrouter-project/vrouter/core/engine"
	"github.com/vrouter-project/vrouter/core/router"
	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/storage"
	"github.com/vrouter-project/vrouter/utils/address"
)

func u64(x uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, x)
	return b
}

type testNodeCtx struct {
	n      *RouterNode
	pub    state.PubkeyType
	priv   state.PrivkeyType
	caller state.AddressType
	gold   state.AddressType
	userX  state.AddressType
}

func newTestNode(t *testing.T, cfg RouterNodeConfig) *testNodeCtx {
	c := &testNodeCtx{}
	c.pub, c.priv = state.GenKeyPair(rand.Reader)
	c.caller = state.PubkeyToAddress(c.pub)
	c.userX = state.AddressType{7, 7}
	c.gold = NamedAddress("token.gold")
	genesis := &GenesisAlloc{
		Native: map[string]uint64{address.EncodeAddr(c.caller): 100000},
		Tokens: map[string]map[string]uint64{
			"token.gold": {address.EncodeAddr(c.caller): 1000},
		},
	}
	n, err := NewRouterNode(cfg, genesis)
	require.NoError(t, err)
	c.n = n
	return c
}

func (c *testNodeCtx) approve(t *testing.T, nonce uint64, amount uint64) {
	ar := &ApproveRequest{
		SenderPubkey: c.pub,
		Nonce:        nonce,
		Token:        c.gold,
		Spender:      c.n.RouterAddress(),
		Amount:       amount,
	}
	ar.Sign(c.priv)
	require.NoError(t, c.n.SubmitApprove(ar))
}

func (c *testNodeCtx) executeRequest(nonce uint64) *router.Request {
	cmd := engine.EncodeCommand(&engine.Command{
		Method: engine.TOKEN_TRANSFER,
		Target: c.gold,
		In:     []byte{0, 1},
		Out:    engine.OutNone,
	})
	rq := &router.Request{
		SenderPubkey: c.pub,
		Nonce:        nonce,
		GasLimit:     1000000,
		Commands:     [][]byte{cmd},
		State:        [][]byte{c.userX[:], u64(100)},
		Approvals: []router.TokenMove{
			{Token: c.gold, Amount: 100, To: c.n.RouterAddress()},
		},
		Checks: []router.PostconditionCheck{
			{Target: c.userX, Token: c.gold, Value: 100, Op: router.CmpGe},
		},
	}
	rq.Sign(c.priv)
	return rq
}

func TestNodeExecuteFlow(t *testing.T) {
	c := newTestNode(t, RouterNodeConfig{})
	c.approve(t, 0, 100)
	rec, err := c.n.SubmitRequest(c.executeRequest(1))
	require.NoError(t, err)
	require.True(t, rec.Success, rec.Error)
	require.Equal(t, uint64(100), c.n.GetTokenBalance(c.gold, c.userX))
	require.Equal(t, uint64(900), c.n.GetTokenBalance(c.gold, c.caller))
	require.Equal(t, uint64(0), c.n.GetAllowance(c.gold, c.caller, c.n.RouterAddress()))
	// escrow + script transfer both traced
	require.Len(t, rec.Transfers, 2)

	got, ok := c.n.GetReceipt(rec.Hash)
	require.True(t, ok)
	require.Equal(t, rec, got)
}

func TestNodeExecutionFailureInReceipt(t *testing.T) {
	c := newTestNode(t, RouterNodeConfig{})
	// no allowance granted: escrow fails, receipt carries the error
	rec, err := c.n.SubmitRequest(c.executeRequest(0))
	require.NoError(t, err)
	require.False(t, rec.Success)
	require.NotEmpty(t, rec.Error)
	require.Equal(t, uint64(1000), c.n.GetTokenBalance(c.gold, c.caller))
	// the nonce is consumed anyway
	require.Equal(t, uint64(1), c.n.GetAccountInfo(c.caller).Nonce)
}

func TestNodeRejectsBadSigAndNonce(t *testing.T) {
	c := newTestNode(t, RouterNodeConfig{})
	rq := c.executeRequest(0)
	rq.GasLimit++
	_, err := c.n.SubmitRequest(rq)
	require.ErrorIs(t, err, ErrSignatureMismatch)

	rq = c.executeRequest(5)
	_, err = c.n.SubmitRequest(rq)
	require.ErrorIs(t, err, ErrNonceMismatch)

	// replay of an executed request
	c.approve(t, 0, 100)
	rq = c.executeRequest(1)
	_, err = c.n.SubmitRequest(rq)
	require.NoError(t, err)
	_, err = c.n.SubmitRequest(rq)
	require.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestNodeGasCap(t *testing.T) {
	c := newTestNode(t, RouterNodeConfig{GasCap: 1000})
	_, err := c.n.SubmitRequest(c.executeRequest(0))
	require.ErrorIs(t, err, ErrGasLimitTooHigh)
}

func TestNodeFaucet(t *testing.T) {
	c := newTestNode(t, RouterNodeConfig{})
	require.ErrorIs(t, c.n.Faucet(c.userX, 10), ErrFaucetDisabled)
	c = newTestNode(t, RouterNodeConfig{Faucet: true})
	require.NoError(t, c.n.Faucet(c.userX, 10))
	require.Equal(t, uint64(10), c.n.GetAccountInfo(c.userX).Balance)
}

func TestNodeCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	cfg := RouterNodeConfig{Checkpoint: storage.CheckpointConfig{Path: path}}
	c := newTestNode(t, cfg)
	c.approve(t, 0, 100)
	rec, err := c.n.SubmitRequest(c.executeRequest(1))
	require.NoError(t, err)
	require.True(t, rec.Success, rec.Error)
	require.NoError(t, c.n.SaveCheckpoint())

	// a new node on the same checkpoint ignores genesis balances
	c2 := newTestNode(t, cfg)
	require.Equal(t, uint64(100), c2.n.GetTokenBalance(c.gold, c.userX))
	require.Equal(t, uint64(900), c2.n.GetTokenBalance(c.gold, c.caller))
	require.Equal(t, uint64(2), c2.n.GetAccountInfo(c.caller).Nonce)
}

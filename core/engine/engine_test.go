package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/core/token"
	"github.com/vrouter-project/vrouter/storage"
)

var routerAddr = state.AddressType{0xf0}
var tokenAddr = state.AddressType{0xaa}
var mathAddr = state.AddressType{0xbb}
var userAddr = state.AddressType{1}

func newTestEngine() *Engine {
	e := NewEngine()
	e.Register(tokenAddr, &TokenContract{Token: tokenAddr})
	e.RegisterLibrary(mathAddr, MathLib{})
	return e
}

func newTestEnv(s *storage.Slice) *Env {
	return &Env{
		S:             s,
		Origin:        userAddr,
		Self:          routerAddr,
		Gas:           10000000,
		AllowDelegate: true,
	}
}

func TestCommandCodec(t *testing.T) {
	c := &Command{
		Method: TOKEN_TRANSFER,
		Flags:  FlagWithValue | FlagTry,
		Target: tokenAddr,
		Value:  12345,
		In:     []byte{0, 2, 5},
		Out:    3,
	}
	d, err := DecodeCommand(EncodeCommand(c))
	require.NoError(t, err)
	require.Equal(t, c, d)

	_, err = DecodeCommand(nil)
	require.ErrorIs(t, err, ErrBadCommand)
	_, err = DecodeCommand(EncodeCommand(c)[:cmdHeaderLen])
	require.ErrorIs(t, err, ErrBadCommand)

	// value without FlagWithValue
	c2 := &Command{Value: 1, Out: OutNone}
	_, err = DecodeCommand(EncodeCommand(c2))
	require.ErrorIs(t, err, ErrBadCommand)
}

func TestRunTokenTransfer(t *testing.T) {
	s := storage.EmptySlice()
	require.NoError(t, token.Mint(s, tokenAddr, routerAddr, 1000))
	e := newTestEngine()
	cmds := [][]byte{
		EncodeCommand(&Command{
			Method: TOKEN_TRANSFER,
			Target: tokenAddr,
			In:     []byte{0, 1},
			Out:    OutNone,
		}),
		EncodeCommand(&Command{
			Method: TOKEN_BALANCE_OF,
			Target: tokenAddr,
			In:     []byte{0},
			Out:    2,
		}),
	}
	st := [][]byte{userAddr[:], retUint64(400)}
	out, err := e.Run(newTestEnv(s), cmds, st)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, retUint64(400), out[2])
	require.Equal(t, uint64(400), token.BalanceOf(s, tokenAddr, userAddr))
	require.Equal(t, uint64(600), token.BalanceOf(s, tokenAddr, routerAddr))
}

func TestRunNativeTransfer(t *testing.T) {
	s := storage.EmptySlice()
	state.SetAccount(s, routerAddr, state.AccountInfo{Balance: 500})
	e := newTestEngine()
	cmds := [][]byte{
		EncodeCommand(&Command{
			Flags:  FlagWithValue,
			Target: userAddr,
			Value:  200,
			Out:    OutNone,
		}),
	}
	_, err := e.Run(newTestEnv(s), cmds, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(200), state.GetAccount(s, userAddr).Balance)
	require.Equal(t, uint64(300), state.GetAccount(s, routerAddr).Balance)

	// unregistered target rejects anything but a plain transfer
	cmds = [][]byte{
		EncodeCommand(&Command{Method: 9, Target: userAddr, Out: OutNone}),
	}
	_, err = e.Run(newTestEnv(s), cmds, nil)
	require.ErrorIs(t, err, ErrUnknownContract)
}

func TestRunDelegatePolicy(t *testing.T) {
	s := storage.EmptySlice()
	e := newTestEngine()
	cmds := [][]byte{
		EncodeCommand(&Command{
			Method: MATH_ADD,
			Flags:  FlagDelegate,
			Target: mathAddr,
			In:     []byte{0, 1},
			Out:    2,
		}),
	}
	st := [][]byte{retUint64(2), retUint64(40)}
	env := newTestEnv(s)
	out, err := e.Run(env, cmds, st)
	require.NoError(t, err)
	require.Equal(t, retUint64(42), out[2])

	env = newTestEnv(s)
	env.AllowDelegate = false
	_, err = e.Run(env, cmds, st)
	require.ErrorIs(t, err, ErrDelegateDisabled)
}

func TestRunTryFlag(t *testing.T) {
	s := storage.EmptySlice()
	e := newTestEngine()
	// transfer without funds fails; FlagTry absorbs the failure
	fail := &Command{
		Method: TOKEN_TRANSFER,
		Target: tokenAddr,
		In:     []byte{0, 1},
		Out:    OutNone,
	}
	st := [][]byte{userAddr[:], retUint64(1)}
	_, err := e.Run(newTestEnv(s), [][]byte{EncodeCommand(fail)}, st)
	require.ErrorIs(t, err, token.ErrInsufficientBalance)

	fail.Flags = FlagTry
	_, err = e.Run(newTestEnv(s), [][]byte{EncodeCommand(fail)}, st)
	require.NoError(t, err)
}

func TestRunGasExhaustion(t *testing.T) {
	s := storage.EmptySlice()
	e := newTestEngine()
	cmds := [][]byte{
		EncodeCommand(&Command{
			Method: TOKEN_BALANCE_OF,
			Target: tokenAddr,
			In:     []byte{0},
			Out:    1,
		}),
	}
	env := newTestEnv(s)
	env.Gas = GasCommand // command gas only, none left for the call
	_, err := e.Run(env, cmds, [][]byte{userAddr[:]})
	require.ErrorIs(t, err, ErrInsufficientGas)
}

func TestRunBadSlots(t *testing.T) {
	s := storage.EmptySlice()
	e := newTestEngine()
	cmds := [][]byte{
		EncodeCommand(&Command{
			Method: TOKEN_BALANCE_OF,
			Target: tokenAddr,
			In:     []byte{7},
			Out:    OutNone,
		}),
	}
	_, err := e.Run(newTestEnv(s), cmds, [][]byte{userAddr[:]})
	require.ErrorIs(t, err, ErrBadSlot)

	cmds = [][]byte{
		EncodeCommand(&Command{
			Method: TOKEN_BALANCE_OF,
			Target: tokenAddr,
			In:     []byte{0},
			Out:    5,
		}),
	}
	_, err = e.Run(newTestEnv(s), cmds, [][]byte{userAddr[:]})
	require.ErrorIs(t, err, ErrBadSlot)
}

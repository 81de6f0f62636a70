package engine

import (
	"encoding/binary"

	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/core/token"
)

const TOKEN_TRANSFER = 1
const TOKEN_TRANSFER_FROM = 2
const TOKEN_APPROVE = 3
const TOKEN_BALANCE_OF = 4

var GasTokenMethod = map[byte]uint64{
	TOKEN_TRANSFER:      21000,
	TOKEN_TRANSFER_FROM: 28000,
	TOKEN_APPROVE:       18000,
	TOKEN_BALANCE_OF:    8000,
}

func argAddr(b []byte) (state.AddressType, bool) {
	var a state.AddressType
	if len(b) != state.AddressLen {
		return a, false
	}
	copy(a[:], b)
	return a, true
}

func argUint64(b []byte) (uint64, bool) {
	if len(b) != 8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

func retUint64(x uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, x)
	return b
}

// TokenContract exposes one token's ledger to scripts. The calling context
// (sender for transfer, spender for transferFrom, owner for approve) is
// always the engine owner, i.e. Env.Self.
type TokenContract struct {
	Token state.AddressType
}

func (t *TokenContract) Call(env *Env, method byte, value uint64, args [][]byte) ([]byte, error) {
	gas, ok := GasTokenMethod[method]
	if !ok {
		return nil, ErrUnknownMethod
	}
	if env.Gas < gas {
		return nil, ErrInsufficientGas
	}
	env.Gas -= gas
	switch method {
	case TOKEN_TRANSFER:
		if len(args) != 2 {
			return nil, ErrBadArgs
		}
		to, ok1 := argAddr(args[0])
		amount, ok2 := argUint64(args[1])
		if !ok1 || !ok2 {
			return nil, ErrBadArgs
		}
		return nil, token.Transfer(env.S, t.Token, env.Self, to, amount, env.Callback)
	case TOKEN_TRANSFER_FROM:
		if len(args) != 3 {
			return nil, ErrBadArgs
		}
		from, ok1 := argAddr(args[0])
		to, ok2 := argAddr(args[1])
		amount, ok3 := argUint64(args[2])
		if !ok1 || !ok2 || !ok3 {
			return nil, ErrBadArgs
		}
		return nil, token.TransferFrom(env.S, t.Token, env.Self, from, to, amount, env.Callback)
	case TOKEN_APPROVE:
		if len(args) != 2 {
			return nil, ErrBadArgs
		}
		spender, ok1 := argAddr(args[0])
		amount, ok2 := argUint64(args[1])
		if !ok1 || !ok2 {
			return nil, ErrBadArgs
		}
		token.Approve(env.S, t.Token, env.Self, spender, amount)
		return nil, nil
	case TOKEN_BALANCE_OF:
		if len(args) != 1 {
			return nil, ErrBadArgs
		}
		owner, ok1 := argAddr(args[0])
		if !ok1 {
			return nil, ErrBadArgs
		}
		return retUint64(token.BalanceOf(env.S, t.Token, owner)), nil
	}
	return nil, ErrUnknownMethod
}

const MATH_ADD = 1
const MATH_SUB = 2
const MATH_MUL = 3

// MathLib is a delegate-called helper for combining uint64 state buffers.
type MathLib struct{}

func (MathLib) CallDelegate(env *Env, method byte, args [][]byte) ([]byte, error) {
	if len(args) != 2 {
		return nil, ErrBadArgs
	}
	a, ok1 := argUint64(args[0])
	b, ok2 := argUint64(args[1])
	if !ok1 || !ok2 {
		return nil, ErrBadArgs
	}
	switch method {
	case MATH_ADD:
		if a+b < a {
			return nil, ErrBadArgs
		}
		return retUint64(a + b), nil
	case MATH_SUB:
		if b > a {
			return nil, ErrBadArgs
		}
		return retUint64(a - b), nil
	case MATH_MUL:
		if b != 0 && a*b/b != a {
			return nil, ErrBadArgs
		}
		return retUint64(a * b), nil
	}
	return nil, ErrUnknownMethod
}

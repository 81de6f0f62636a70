// Package token implements a fungible token ledger over storage slices.
// Tokens are identified by address; balances and allowances are plain
// storage entries, so no deployment step exists.
package token

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math"

	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/storage"
)

// MaxAllowance is never decremented by TransferFrom.
const MaxAllowance = math.MaxUint64

var ErrInsufficientBalance = errors.New("token balance not enough")
var ErrInsufficientAllowance = errors.New("token allowance not enough")
var ErrBalanceOverflow = errors.New("token balance overflow")

func balanceKey(token state.AddressType, owner state.AddressType) storage.KeyType {
	key := storage.KeyType{}
	key[0] = 3
	copy(key[1:33], token[:])
	copy(key[33:65], owner[:])
	return key
}

func allowanceKey(token state.AddressType, owner state.AddressType, spender state.AddressType) storage.KeyType {
	buf := make([]byte, 0, state.AddressLen*3)
	buf = append(buf, token[:]...)
	buf = append(buf, owner[:]...)
	buf = append(buf, spender[:]...)
	h := sha256.Sum256(buf)
	key := storage.KeyType{}
	key[0] = 4
	copy(key[1:33], h[:])
	return key
}

func readUint64(s *storage.Slice, k storage.KeyType) uint64 {
	v := s.Read(k)
	return binary.LittleEndian.Uint64(v[:8])
}

func writeUint64(s *storage.Slice, k storage.KeyType, x uint64) {
	v := storage.DataType{}
	binary.LittleEndian.PutUint64(v[:8], x)
	s.Write(k, v)
}

func BalanceOf(s *storage.Slice, token state.AddressType, owner state.AddressType) uint64 {
	return readUint64(s, balanceKey(token, owner))
}

func Mint(s *storage.Slice, token state.AddressType, to state.AddressType, amount uint64) error {
	k := balanceKey(token, to)
	old := readUint64(s, k)
	if old+amount < old {
		return ErrBalanceOverflow
	}
	writeUint64(s, k, old+amount)
	return nil
}

func Transfer(s *storage.Slice, token state.AddressType, from state.AddressType, to state.AddressType, amount uint64, cb *state.ExecutionCallback) error {
	fk := balanceKey(token, from)
	fb := readUint64(s, fk)
	if fb < amount {
		return ErrInsufficientBalance
	}
	if from != to {
		tk := balanceKey(token, to)
		tb := readUint64(s, tk)
		if tb+amount < tb {
			return ErrBalanceOverflow
		}
		writeUint64(s, fk, fb-amount)
		writeUint64(s, tk, tb+amount)
	}
	if cb != nil && cb.Transfer != nil {
		cb.Transfer(s, token, from, to, amount)
	}
	return nil
}

func Allowance(s *storage.Slice, token state.AddressType, owner state.AddressType, spender state.AddressType) uint64 {
	return readUint64(s, allowanceKey(token, owner, spender))
}

func Approve(s *storage.Slice, token state.AddressType, owner state.AddressType, spender state.AddressType, amount uint64) {
	writeUint64(s, allowanceKey(token, owner, spender), amount)
}

// TransferFrom spends owner funds on behalf of spender. The owner's own
// transfers skip the allowance check.
func TransferFrom(s *storage.Slice, token state.AddressType, spender state.AddressType, from state.AddressType, to state.AddressType, amount uint64, cb *state.ExecutionCallback) error {
	if spender != from {
		ak := allowanceKey(token, from, spender)
		al := readUint64(s, ak)
		if al < amount {
			return ErrInsufficientAllowance
		}
		if al != MaxAllowance {
			writeUint64(s, ak, al-amount)
		}
	}
	return Transfer(s, token, from, to, amount, cb)
}

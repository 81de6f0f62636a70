package state

import (
	"encoding/binary"
	"errors"

	"github.com/vrouter-project/vrouter/storage"
)

var ErrInsufficientBalance = errors.New("balance not enough")
var ErrBalanceOverflow = errors.New("balance overflow")

type AccountInfo struct {
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

// ExecutionCallback receives a notification for every applied transfer.
// Token is the zero address for native transfers.
type ExecutionCallback struct {
	Transfer func(s *storage.Slice, token AddressType, from AddressType, to AddressType, value uint64)
}

func accountKey(address AddressType) storage.KeyType {
	key := storage.KeyType{}
	key[0] = 1
	copy(key[1:33], address[:])
	return key
}

func GetAccount(s *storage.Slice, address AddressType) AccountInfo {
	val := s.Read(accountKey(address))
	return AccountInfo{
		Balance: binary.LittleEndian.Uint64(val[:8]),
		Nonce:   binary.LittleEndian.Uint64(val[8:16]),
	}
}

func SetAccount(s *storage.Slice, address AddressType, info AccountInfo) {
	val := storage.DataType{}
	binary.LittleEndian.PutUint64(val[:8], info.Balance)
	binary.LittleEndian.PutUint64(val[8:16], info.Nonce)
	s.Write(accountKey(address), val)
}

// TransferNative moves value between native accounts. A transfer to self is
// a no-op apart from the balance check.
func TransferNative(s *storage.Slice, from AddressType, to AddressType, value uint64, cb *ExecutionCallback) error {
	fa := GetAccount(s, from)
	if fa.Balance < value {
		return ErrInsufficientBalance
	}
	if from != to {
		ta := GetAccount(s, to)
		if ta.Balance+value < ta.Balance {
			return ErrBalanceOverflow
		}
		fa.Balance -= value
		SetAccount(s, from, fa)
		ta.Balance += value
		SetAccount(s, to, ta)
	}
	if cb != nil && cb.Transfer != nil {
		cb.Transfer(s, AddressType{}, from, to, value)
	}
	return nil
}

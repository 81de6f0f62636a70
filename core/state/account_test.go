package state

import (
	"testing"

	"github.com/vrouter-project/vrouter/storage"
)

func TestAccountRoundTrip(t *testing.T) {
	s := storage.EmptySlice()
	a := AddressType{1, 2, 3}
	SetAccount(s, a, AccountInfo{Balance: 12345, Nonce: 7})
	ai := GetAccount(s, a)
	if ai.Balance != 12345 || ai.Nonce != 7 {
		t.Fatalf("wrong account info: %v", ai)
	}
	if GetAccount(s, AddressType{9}) != (AccountInfo{}) {
		t.Fatal("unknown account not empty")
	}
}

func TestTransferNative(t *testing.T) {
	s := storage.EmptySlice()
	a := AddressType{1}
	b := AddressType{2}
	SetAccount(s, a, AccountInfo{Balance: 100})
	if err := TransferNative(s, a, b, 30, nil); err != nil {
		t.Fatal(err)
	}
	if GetAccount(s, a).Balance != 70 || GetAccount(s, b).Balance != 30 {
		t.Fatal("wrong balances after transfer")
	}
	if err := TransferNative(s, a, b, 71, nil); err != ErrInsufficientBalance {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := TransferNative(s, a, a, 70, nil); err != nil {
		t.Fatal(err)
	}
	if GetAccount(s, a).Balance != 70 {
		t.Fatal("self transfer changed balance")
	}
}

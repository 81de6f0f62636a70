// Package address implements the textual address format: "vr" followed by
// base58 of (version byte, raw address, checksum byte).
package address

import (
	"errors"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/vrouter-project/vrouter/core/state"
)

const Prefix = "vr"

func checkSum(addr state.AddressType) byte {
	var res byte = 0
	for _, x := range addr {
		res += x
	}
	return res
}

func ParseAddr(addr string) (state.AddressType, error) {
	var ra state.AddressType
	if !strings.HasPrefix(addr, Prefix) {
		return ra, errors.New("addr prefix invalid")
	}
	buf, err := base58.Decode(addr[len(Prefix):])
	if err != nil {
		return ra, err
	}
	if len(buf) != state.AddressLen+2 {
		return ra, errors.New("addr len invalid")
	}
	if buf[0] != 1 {
		return ra, errors.New("addr type invalid")
	}
	copy(ra[:], buf[1:1+state.AddressLen])
	if buf[1+state.AddressLen] != checkSum(ra) {
		return ra, errors.New("addr checksum invalid")
	}
	return ra, nil
}

func EncodeAddr(addr state.AddressType) string {
	buf := make([]byte, state.AddressLen+2)
	buf[0] = 1
	copy(buf[1:1+state.AddressLen], addr[:])
	buf[1+state.AddressLen] = checkSum(addr)
	return Prefix + base58.Encode(buf)
}

package engine

import (
	"encoding/binary"
	"errors"

	"github.com/vrouter-project/vrouter/core/state"
)

const FlagWithValue = 1
const FlagDelegate = 2
const FlagTry = 4

// OutNone discards the command output.
const OutNone = 0xff

const cmdHeaderLen = 44
const MaxInSlots = 32

var ErrBadCommand = errors.New("malformed command")

// Command is one engine instruction. In lists state-slot indices whose
// buffers become the call arguments; Out is the state slot receiving the
// return buffer (OutNone to discard, len(state) to append).
type Command struct {
	Method byte
	Flags  byte
	Target state.AddressType
	Value  uint64
	In     []byte
	Out    byte
}

func EncodeCommand(c *Command) []byte {
	buf := make([]byte, cmdHeaderLen+len(c.In))
	buf[0] = c.Method
	buf[1] = c.Flags
	copy(buf[2:34], c.Target[:])
	binary.LittleEndian.PutUint64(buf[34:42], c.Value)
	buf[42] = c.Out
	buf[43] = byte(len(c.In))
	copy(buf[cmdHeaderLen:], c.In)
	return buf
}

func DecodeCommand(buf []byte) (*Command, error) {
	if len(buf) < cmdHeaderLen {
		return nil, ErrBadCommand
	}
	c := &Command{
		Method: buf[0],
		Flags:  buf[1],
		Value:  binary.LittleEndian.Uint64(buf[34:42]),
		Out:    buf[42],
	}
	copy(c.Target[:], buf[2:34])
	nIn := int(buf[43])
	if nIn > MaxInSlots || len(buf) != cmdHeaderLen+nIn {
		return nil, ErrBadCommand
	}
	if c.Value != 0 && c.Flags&FlagWithValue == 0 {
		return nil, ErrBadCommand
	}
	if c.Flags&FlagDelegate != 0 && c.Flags&FlagWithValue != 0 {
		return nil, ErrBadCommand
	}
	c.In = buf[cmdHeaderLen : cmdHeaderLen+nIn : cmdHeaderLen+nIn]
	return c, nil
}

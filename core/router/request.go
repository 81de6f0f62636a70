package router

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"

	"github.com/vrouter-project/vrouter/core/state"
)

const MaxCommands = 1024
const MaxStateBuffers = 256
const MaxBufferLen = 1 << 20
const MaxListEntries = 1024

var ErrRequestTooLarge = errors.New("request field too large")

// Request is one signed top-level invocation as submitted to a node.
type Request struct {
	SenderPubkey state.PubkeyType
	SenderSig    state.SigType
	Nonce        uint64
	Value        uint64
	GasLimit     uint64
	Commands     [][]byte
	State        [][]byte
	Approvals    []TokenMove
	Checks       []PostconditionCheck
}

func (rq *Request) Caller() state.AddressType {
	return state.PubkeyToAddress(rq.SenderPubkey)
}

func writeUint64(w io.Writer, x uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, x)
	_, err := w.Write(buf)
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	buf := make([]byte, 8)
	_, err := io.ReadFull(r, buf)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

func writeBufList(w io.Writer, list [][]byte) error {
	if err := writeUint64(w, uint64(len(list))); err != nil {
		return err
	}
	for _, b := range list {
		if err := writeUint64(w, uint64(len(b))); err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func readBufList(r io.Reader, maxEntries int) ([][]byte, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	if n > uint64(maxEntries) {
		return nil, ErrRequestTooLarge
	}
	list := make([][]byte, n)
	for i := range list {
		l, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		if l > MaxBufferLen {
			return nil, ErrRequestTooLarge
		}
		list[i] = make([]byte, l)
		if _, err := io.ReadFull(r, list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (rq *Request) encodeBody(w io.Writer) error {
	if err := writeUint64(w, rq.Nonce); err != nil {
		return err
	}
	if err := writeUint64(w, rq.Value); err != nil {
		return err
	}
	if err := writeUint64(w, rq.GasLimit); err != nil {
		return err
	}
	if err := writeBufList(w, rq.Commands); err != nil {
		return err
	}
	if err := writeBufList(w, rq.State); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(len(rq.Approvals))); err != nil {
		return err
	}
	for i := range rq.Approvals {
		m := &rq.Approvals[i]
		if _, err := w.Write(m.Token[:]); err != nil {
			return err
		}
		if err := writeUint64(w, m.Amount); err != nil {
			return err
		}
		if _, err := w.Write(m.To[:]); err != nil {
			return err
		}
	}
	if err := writeUint64(w, uint64(len(rq.Checks))); err != nil {
		return err
	}
	for i := range rq.Checks {
		c := &rq.Checks[i]
		if _, err := w.Write(c.Target[:]); err != nil {
			return err
		}
		if _, err := w.Write(c.Token[:]); err != nil {
			return err
		}
		if err := writeUint64(w, c.Value); err != nil {
			return err
		}
		if _, err := w.Write([]byte{byte(c.Op)}); err != nil {
			return err
		}
	}
	return nil
}

func (rq *Request) decodeBody(r io.Reader) error {
	var err error
	if rq.Nonce, err = readUint64(r); err != nil {
		return err
	}
	if rq.Value, err = readUint64(r); err != nil {
		return err
	}
	if rq.GasLimit, err = readUint64(r); err != nil {
		return err
	}
	if rq.Commands, err = readBufList(r, MaxCommands); err != nil {
		return err
	}
	if rq.State, err = readBufList(r, MaxStateBuffers); err != nil {
		return err
	}
	n, err := readUint64(r)
	if err != nil {
		return err
	}
	if n > MaxListEntries {
		return ErrRequestTooLarge
	}
	rq.Approvals = make([]TokenMove, n)
	for i := range rq.Approvals {
		m := &rq.Approvals[i]
		if _, err := io.ReadFull(r, m.Token[:]); err != nil {
			return err
		}
		if m.Amount, err = readUint64(r); err != nil {
			return err
		}
		if _, err := io.ReadFull(r, m.To[:]); err != nil {
			return err
		}
	}
	if n, err = readUint64(r); err != nil {
		return err
	}
	if n > MaxListEntries {
		return ErrRequestTooLarge
	}
	rq.Checks = make([]PostconditionCheck, n)
	opb := make([]byte, 1)
	for i := range rq.Checks {
		c := &rq.Checks[i]
		if _, err := io.ReadFull(r, c.Target[:]); err != nil {
			return err
		}
		if _, err := io.ReadFull(r, c.Token[:]); err != nil {
			return err
		}
		if c.Value, err = readUint64(r); err != nil {
			return err
		}
		if _, err := io.ReadFull(r, opb); err != nil {
			return err
		}
		c.Op = CompareOp(opb[0])
	}
	return nil
}

func EncodeRequest(w io.Writer, rq *Request) error {
	if _, err := w.Write(rq.SenderPubkey[:]); err != nil {
		return err
	}
	if _, err := w.Write(rq.SenderSig[:]); err != nil {
		return err
	}
	return rq.encodeBody(w)
}

func DecodeRequest(r io.Reader) (*Request, error) {
	rq := &Request{}
	if _, err := io.ReadFull(r, rq.SenderPubkey[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, rq.SenderSig[:]); err != nil {
		return nil, err
	}
	if err := rq.decodeBody(r); err != nil {
		return nil, err
	}
	return rq, nil
}

func (rq *Request) prepareSignData() []byte {
	var buf bytes.Buffer
	// encodeBody cannot fail on a bytes.Buffer
	rq.encodeBody(&buf)
	return buf.Bytes()
}

func (rq *Request) Sign(privKey state.PrivkeyType) {
	data := rq.prepareSignData()
	copy(rq.SenderSig[:], ed25519.Sign(privKey[:], data))
}

func (rq *Request) VerifySig() bool {
	return ed25519.Verify(rq.SenderPubkey[:], rq.prepareSignData(), rq.SenderSig[:])
}

func (rq *Request) Hash() state.HashType {
	var buf bytes.Buffer
	EncodeRequest(&buf, rq)
	return sha256.Sum256(buf.Bytes())
}

// Package storage provides layered copy-on-write key/value slices. A fork of
// a slice records writes locally; merging folds them into the base, dropping
// the fork discards them. Forks are the unit of speculative execution.
package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

type Slice struct {
	base   *Slice
	height int
	st     map[KeyType]DataType
	frozen bool
}

func EmptySlice() *Slice {
	return &Slice{
		st: make(map[KeyType]DataType),
	}
}

func ForkSlice(base *Slice) *Slice {
	return &Slice{
		base:   base,
		height: base.height + 1,
		st:     make(map[KeyType]DataType),
	}
}

func (s *Slice) Height() int {
	return s.height
}

// Merge folds all local writes into the base slice. The fork should be
// discarded afterwards.
func (s *Slice) Merge() {
	for k, v := range s.st {
		s.base.st[k] = v
	}
}

// Flatten folds the whole fork chain into a fresh standalone slice, for
// checkpointing.
func (s *Slice) Flatten() *Slice {
	var chain []*Slice
	for u := s; u != nil; u = u.base {
		chain = append(chain, u)
	}
	flat := EmptySlice()
	flat.height = s.height
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].st {
			flat.st[k] = v
		}
	}
	return flat
}

func (s *Slice) Read(k KeyType) DataType {
	for u := s; u != nil; u = u.base {
		if v, ok := u.st[k]; ok {
			return v
		}
	}
	return DataType{}
}

func (s *Slice) Write(k KeyType, v DataType) {
	if s.frozen {
		panic(errors.New("write to frozen slice"))
	}
	s.st[k] = v
}

func (s *Slice) Freeze() {
	s.frozen = true
}

func (s *Slice) LoadFile(f io.Reader) error {
	if s.frozen {
		return errors.New("load to a frozen slice")
	}
	if len(s.st) > 0 {
		return errors.New("load to a nonempty slice")
	}
	s.frozen = true
	lbuf := make([]byte, 8)
	if _, err := io.ReadFull(f, lbuf); err != nil {
		return fmt.Errorf("error when loading slice: %v", err)
	}
	s.height = int(binary.LittleEndian.Uint64(lbuf))
	if _, err := io.ReadFull(f, lbuf); err != nil {
		return fmt.Errorf("error when loading slice: %v", err)
	}
	cnt := int(binary.LittleEndian.Uint64(lbuf))
	var k KeyType
	var v DataType
	for i := 0; i < cnt; i++ {
		if _, err := io.ReadFull(f, k[:]); err != nil {
			return fmt.Errorf("error when loading slice: %v", err)
		}
		if _, err := io.ReadFull(f, v[:]); err != nil {
			return fmt.Errorf("error when loading slice: %v", err)
		}
		s.st[k] = v
	}
	return nil
}

func (s *Slice) DumpFile(f io.Writer) error {
	lbuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(lbuf, uint64(s.height))
	if _, err := f.Write(lbuf); err != nil {
		return fmt.Errorf("error when dumping slice: %v", err)
	}
	binary.LittleEndian.PutUint64(lbuf, uint64(len(s.st)))
	if _, err := f.Write(lbuf); err != nil {
		return fmt.Errorf("error when dumping slice: %v", err)
	}
	for k, v := range s.st {
		if _, err := f.Write(k[:]); err != nil {
			return fmt.Errorf("error when dumping slice: %v", err)
		}
		if _, err := f.Write(v[:]); err != nil {
			return fmt.Errorf("error when dumping slice: %v", err)
		}
	}
	return nil
}

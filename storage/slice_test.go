package storage

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestSliceSerialization(t *testing.T) {
	s := EmptySlice()
	k := KeyType{}
	v := DataType{}
	for i := 0; i < 100; i++ {
		binary.LittleEndian.PutUint64(k[:16], uint64(i))
		binary.LittleEndian.PutUint64(v[:16], uint64(i*i))
		s.Write(k, v)
	}
	var buf bytes.Buffer
	err := s.DumpFile(&buf)
	if err != nil {
		t.Fatal(err)
	}
	s2 := EmptySlice()
	err = s2.LoadFile(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		binary.LittleEndian.PutUint64(k[:16], uint64(i))
		binary.LittleEndian.PutUint64(v[:16], uint64(i*i))
		if s2.Read(k) != v {
			t.Fatalf("wrong: %x %x %x", k, v, s2.Read(k))
		}
	}
}

func TestSliceBase(t *testing.T) {
	s := EmptySlice()
	s.Freeze()
	k := KeyType{}
	v := DataType{}
	for i := 1; i <= 100; i++ {
		s = ForkSlice(s)
		for j := i; j <= 100; j++ {
			binary.LittleEndian.PutUint64(k[:16], uint64(j))
			binary.LittleEndian.PutUint64(v[:16], uint64(i))
			s.Write(k, v)
		}
	}
	for i := 1; i <= 100; i++ {
		binary.LittleEndian.PutUint64(k[:16], uint64(i))
		binary.LittleEndian.PutUint64(v[:16], uint64(i))
		if s.Read(k) != v {
			t.Fatalf("wrong: %x %x %x", k, v, s.Read(k))
		}
	}
}

func TestSliceForkDiscard(t *testing.T) {
	s := EmptySlice()
	k := KeyType{1}
	v := DataType{2}
	s.Write(k, v)
	f := ForkSlice(s)
	f.Write(k, DataType{3})
	if s.Read(k) != v {
		t.Fatal("base changed before merge")
	}
	f2 := ForkSlice(s)
	f2.Write(k, DataType{4})
	f2.Merge()
	if s.Read(k) != (DataType{4}) {
		t.Fatal("merge not applied")
	}
}

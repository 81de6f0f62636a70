package storage

import "crypto/sha256"

const KeyLen = 65
const DataLen = 32
const SliceKeyLen = sha256.Size

type KeyType [KeyLen]byte
type DataType [DataLen]byte
type SliceKeyType [SliceKeyLen]byte

type CheckpointConfig struct {
	Path     string  `json:"path" env:"VROUTER_CHECKPOINT_PATH"`
	Interval float64 `json:"interval_seconds" env:"VROUTER_CHECKPOINT_INTERVAL"`
}

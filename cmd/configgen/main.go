package main

import (
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/vrouter-project/vrouter/core"
	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/storage"
	"github.com/vrouter-project/vrouter/utils/address"
)

func writeJSON(path string, v interface{}) {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(path, append(buf, '\n'), 0o644); err != nil {
		log.Fatal(err)
	}
}

func main() {
	cfn := flag.String("config", "config.json", "config file to write")
	gfn := flag.String("genesis", "genesis.json", "genesis alloc file to write")
	flag.Parse()

	pub, priv := state.GenKeyPair(rand.Reader)
	addr := state.PubkeyToAddress(pub)
	eaddr := address.EncodeAddr(addr)

	c := core.RouterNodeConfig{
		AllowDelegate: false,
		GasCap:        100000000,
		Faucet:        true,
		Checkpoint: storage.CheckpointConfig{
			Path:     "vrouter-state.bin",
			Interval: 60,
		},
	}
	writeJSON(*cfn, &c)

	g := core.GenesisAlloc{
		Native: map[string]uint64{eaddr: 1000000000},
		Tokens: map[string]map[string]uint64{
			"token.gold": {eaddr: 1000000},
		},
	}
	writeJSON(*gfn, &g)

	fmt.Printf("dev wallet address: %s\n", eaddr)
	fmt.Printf("dev wallet privkey: %x\n", priv[:])
	fmt.Printf("wrote %s and %s\n", *cfn, *gfn)
}

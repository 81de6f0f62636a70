package main

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/vrouter-project/vrouter/core"
	"github.com/vrouter-project/vrouter/core/engine"
	"github.com/vrouter-project/vrouter/core/router"
	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/utils/address"
)

// scriptFile is the JSON form of one execute request, as written by hand.
type scriptFile struct {
	Value    uint64          `json:"value"`
	GasLimit uint64          `json:"gas_limit"`
	Commands []scriptCommand `json:"commands"`
	State    []string        `json:"state"`
	Approve  []scriptMove    `json:"approvals"`
	Checks   []scriptCheck   `json:"checks"`
}

type scriptCommand struct {
	Target string `json:"target"`
	Method byte   `json:"method"`
	Flags  string `json:"flags"`
	Value  uint64 `json:"value"`
	In     []byte `json:"in"`
	Out    *byte  `json:"out"`
}

type scriptMove struct {
	Token  string `json:"token"`
	Amount uint64 `json:"amount"`
	To     string `json:"to"`
}

type scriptCheck struct {
	Target string `json:"target"`
	Token  string `json:"token"`
	Value  uint64 `json:"value"`
	Op     string `json:"op"`
}

func parseTarget(s string) (state.AddressType, error) {
	if strings.HasPrefix(s, address.Prefix) {
		return address.ParseAddr(s)
	}
	return core.TokenAddr(s), nil
}

func parseFlags(s string) (byte, error) {
	var flags byte
	if s == "" {
		return 0, nil
	}
	for _, f := range strings.Split(s, ",") {
		switch strings.TrimSpace(f) {
		case "value":
			flags |= engine.FlagWithValue
		case "delegate":
			flags |= engine.FlagDelegate
		case "try":
			flags |= engine.FlagTry
		default:
			return 0, fmt.Errorf("unknown command flag %q", f)
		}
	}
	return flags, nil
}

func parseOp(s string) (router.CompareOp, error) {
	switch s {
	case "==":
		return router.CmpEq, nil
	case "!=":
		return router.CmpNe, nil
	case ">":
		return router.CmpGt, nil
	case ">=":
		return router.CmpGe, nil
	case "<":
		return router.CmpLt, nil
	case "<=":
		return router.CmpLe, nil
	}
	return 0, fmt.Errorf("unknown compare op %q", s)
}

// parseStateEntry accepts "addr:<textual address>", "u64:<decimal>" or
// "hex:<bytes>".
func parseStateEntry(s string) ([]byte, error) {
	switch {
	case strings.HasPrefix(s, "addr:"):
		a, err := address.ParseAddr(s[5:])
		if err != nil {
			return nil, err
		}
		return a[:], nil
	case strings.HasPrefix(s, "u64:"):
		var x uint64
		if _, err := fmt.Sscanf(s[4:], "%d", &x); err != nil {
			return nil, err
		}
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, x)
		return b, nil
	case strings.HasPrefix(s, "hex:"):
		return hex.DecodeString(s[4:])
	}
	return nil, fmt.Errorf("unknown state entry %q", s)
}

func buildRequest(sf *scriptFile) (*router.Request, error) {
	rq := &router.Request{
		Value:    sf.Value,
		GasLimit: sf.GasLimit,
	}
	if rq.GasLimit == 0 {
		rq.GasLimit = 10000000
	}
	for i := range sf.Commands {
		sc := &sf.Commands[i]
		target, err := parseTarget(sc.Target)
		if err != nil {
			return nil, err
		}
		flags, err := parseFlags(sc.Flags)
		if err != nil {
			return nil, err
		}
		if sc.Value != 0 {
			flags |= engine.FlagWithValue
		}
		out := byte(engine.OutNone)
		if sc.Out != nil {
			out = *sc.Out
		}
		rq.Commands = append(rq.Commands, engine.EncodeCommand(&engine.Command{
			Method: sc.Method,
			Flags:  flags,
			Target: target,
			Value:  sc.Value,
			In:     sc.In,
			Out:    out,
		}))
	}
	for _, s := range sf.State {
		b, err := parseStateEntry(s)
		if err != nil {
			return nil, err
		}
		rq.State = append(rq.State, b)
	}
	for i := range sf.Approve {
		sm := &sf.Approve[i]
		to, err := address.ParseAddr(sm.To)
		if err != nil {
			return nil, err
		}
		rq.Approvals = append(rq.Approvals, router.TokenMove{
			Token:  core.TokenAddr(sm.Token),
			Amount: sm.Amount,
			To:     to,
		})
	}
	for i := range sf.Checks {
		sc := &sf.Checks[i]
		target, err := address.ParseAddr(sc.Target)
		if err != nil {
			return nil, err
		}
		op, err := parseOp(sc.Op)
		if err != nil {
			return nil, err
		}
		var tk state.AddressType
		if sc.Token != "" && sc.Token != "native" {
			tk = core.TokenAddr(sc.Token)
		}
		rq.Checks = append(rq.Checks, router.PostconditionCheck{
			Target: target,
			Token:  tk,
			Value:  sc.Value,
			Op:     op,
		})
	}
	return rq, nil
}

package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/vrouter-project/vrouter/core"
	"github.com/vrouter-project/vrouter/core/router"
	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/utils/address"
)

var rpcUrl = "http://127.0.0.1:8317/"

func rpcGet(path string, res interface{}) error {
	resp, err := http.Get(rpcUrl + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(res)
}

func rpcPost(path string, body interface{}, res interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(rpcUrl+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(res)
}

func parsePrivkey(s string) (state.PubkeyType, state.PrivkeyType, error) {
	var pub state.PubkeyType
	var priv state.PrivkeyType
	t, err := hex.DecodeString(s)
	if err != nil {
		return pub, priv, err
	}
	if len(t) != state.PrivkeyLen {
		return pub, priv, fmt.Errorf("privkey must be %d bytes", state.PrivkeyLen)
	}
	copy(priv[:], t)
	copy(pub[:], t[32:])
	return pub, priv, nil
}

func fetchNonce(addr state.AddressType) (uint64, error) {
	var res struct {
		Status bool              `json:"status"`
		Msg    string            `json:"msg"`
		Data   state.AccountInfo `json:"data"`
	}
	err := rpcGet("get_account_info/"+address.EncodeAddr(addr), &res)
	if err != nil {
		return 0, err
	}
	if !res.Status {
		return 0, fmt.Errorf("%s", res.Msg)
	}
	return res.Data.Nonce, nil
}

func fetchRouterAddr() (string, error) {
	var res struct {
		Status bool   `json:"status"`
		Msg    string `json:"msg"`
		Router string `json:"router"`
	}
	if err := rpcGet("status", &res); err != nil {
		return "", err
	}
	if !res.Status {
		return "", fmt.Errorf("%s", res.Msg)
	}
	return res.Router, nil
}

func cmdGenWallet(args []string) error {
	_, priv := state.GenKeyPair(rand.Reader)
	fmt.Printf("privkey: %x\n", priv[:])
	var pub state.PubkeyType
	copy(pub[:], priv[32:])
	fmt.Printf("address: %s\n", address.EncodeAddr(state.PubkeyToAddress(pub)))
	return nil
}

func cmdShowWallet(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: showWallet <privkey>")
	}
	pub, _, err := parsePrivkey(args[0])
	if err != nil {
		return err
	}
	addr := state.PubkeyToAddress(pub)
	fmt.Printf("address: %s\n", address.EncodeAddr(addr))
	var res struct {
		Status bool              `json:"status"`
		Msg    string            `json:"msg"`
		Data   state.AccountInfo `json:"data"`
	}
	if err := rpcGet("get_account_info/"+address.EncodeAddr(addr), &res); err != nil {
		return err
	}
	if !res.Status {
		return fmt.Errorf("%s", res.Msg)
	}
	fmt.Printf("balance: %d\n", res.Data.Balance)
	fmt.Printf("nonce: %d\n", res.Data.Nonce)
	return nil
}

func cmdBalance(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: balance <token> <addr>")
	}
	var res struct {
		Status  bool   `json:"status"`
		Msg     string `json:"msg"`
		Balance uint64 `json:"balance"`
	}
	if err := rpcGet("balance_of/"+args[0]+"/"+args[1], &res); err != nil {
		return err
	}
	if !res.Status {
		return fmt.Errorf("%s", res.Msg)
	}
	fmt.Printf("balance: %d\n", res.Balance)
	return nil
}

func cmdApprove(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: approve <privkey> <token> <amount> [spender]")
	}
	pub, priv, err := parsePrivkey(args[0])
	if err != nil {
		return err
	}
	amount, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil {
		return err
	}
	spender := ""
	if len(args) > 3 {
		spender = args[3]
	} else {
		if spender, err = fetchRouterAddr(); err != nil {
			return err
		}
	}
	spenderAddr, err := address.ParseAddr(spender)
	if err != nil {
		return err
	}
	nonce, err := fetchNonce(state.PubkeyToAddress(pub))
	if err != nil {
		return err
	}
	ar := &core.ApproveRequest{
		SenderPubkey: pub,
		Nonce:        nonce,
		Token:        core.TokenAddr(args[1]),
		Spender:      spenderAddr,
		Amount:       amount,
	}
	ar.Sign(priv)
	var res struct {
		Status bool   `json:"status"`
		Msg    string `json:"msg"`
	}
	err = rpcPost("approve", map[string]interface{}{
		"pubkey":  ar.SenderPubkey[:],
		"sig":     ar.SenderSig[:],
		"nonce":   ar.Nonce,
		"token":   args[1],
		"spender": spender,
		"amount":  amount,
	}, &res)
	if err != nil {
		return err
	}
	if !res.Status {
		return fmt.Errorf("%s", res.Msg)
	}
	fmt.Println("approved")
	return nil
}

func cmdExecute(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: execute <privkey> <script.json>")
	}
	pub, priv, err := parsePrivkey(args[0])
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	var sf scriptFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		return err
	}
	rq, err := buildRequest(&sf)
	if err != nil {
		return err
	}
	rq.SenderPubkey = pub
	if rq.Nonce, err = fetchNonce(state.PubkeyToAddress(pub)); err != nil {
		return err
	}
	rq.Sign(priv)
	var buf bytes.Buffer
	if err := router.EncodeRequest(&buf, rq); err != nil {
		return err
	}
	var res struct {
		Status  bool            `json:"status"`
		Msg     string          `json:"msg"`
		Receipt json.RawMessage `json:"receipt"`
	}
	if err := rpcPost("execute", map[string]interface{}{"request": buf.Bytes()}, &res); err != nil {
		return err
	}
	if !res.Status {
		return fmt.Errorf("%s", res.Msg)
	}
	fmt.Printf("receipt: %s\n", res.Receipt)
	return nil
}

func cmdReceipt(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: receipt <hash>")
	}
	var res struct {
		Status  bool            `json:"status"`
		Msg     string          `json:"msg"`
		Receipt json.RawMessage `json:"receipt"`
	}
	if err := rpcGet("get_receipt/"+args[0], &res); err != nil {
		return err
	}
	if !res.Status {
		return fmt.Errorf("%s", res.Msg)
	}
	fmt.Printf("%s\n", res.Receipt)
	return nil
}

func cmdFaucet(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: faucet <addr> <amount>")
	}
	amount, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return err
	}
	var res struct {
		Status bool   `json:"status"`
		Msg    string `json:"msg"`
	}
	err = rpcPost("faucet", map[string]interface{}{"addr": args[0], "amount": amount}, &res)
	if err != nil {
		return err
	}
	if !res.Status {
		return fmt.Errorf("%s", res.Msg)
	}
	fmt.Println("done")
	return nil
}

var commands = map[string]func([]string) error{
	"genWallet":  cmdGenWallet,
	"showWallet": cmdShowWallet,
	"balance":    cmdBalance,
	"approve":    cmdApprove,
	"execute":    cmdExecute,
	"receipt":    cmdReceipt,
	"faucet":     cmdFaucet,
}

func runShell() error {
	rl, err := readline.New("vrouter> ")
	if err != nil {
		return err
	}
	defer rl.Close()
	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return nil
		}
		fn, ok := commands[fields[0]]
		if !ok {
			fmt.Printf("unknown command: %s\n", fields[0])
			continue
		}
		if err := fn(fields[1:]); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func main() {
	if v := os.Getenv("VROUTER_RPC_URL"); v != "" {
		rpcUrl = v
		if !strings.HasSuffix(rpcUrl, "/") {
			rpcUrl += "/"
		}
	}
	if len(os.Args) < 2 {
		fmt.Println("usage: routercli <command> [args]")
		fmt.Println("commands: genWallet showWallet balance approve execute receipt faucet shell")
		os.Exit(1)
	}
	if os.Args[1] == "shell" {
		if err := runShell(); err != nil {
			panic(err)
		}
		return
	}
	fn, ok := commands[os.Args[1]]
	if !ok {
		fmt.Printf("unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
	if err := fn(os.Args[2:]); err != nil {
		panic(err)
	}
}

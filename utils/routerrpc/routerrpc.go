// Package routerrpc exposes a router node over HTTP. All responses use the
// {"status": bool, "msg": ...} envelope; binary payloads travel as base64
// byte arrays inside JSON.
package routerrpc

import (
	"bytes"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/libp2p/go-reuseport"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/vrouter-project/vrouter/core"
	"github.com/vrouter-project/vrouter/core/router"
	"github.com/vrouter-project/vrouter/core/state"
	"github.com/vrouter-project/vrouter/utils/address"
)

const viewCacheTTL = 500 * time.Millisecond

type Server struct {
	r     *gin.Engine
	n     *core.RouterNode
	log   *zap.Logger
	views *cache.Cache
}

func NewServer(n *core.RouterNode, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		r:     gin.New(),
		n:     n,
		log:   logger,
		views: cache.New(viewCacheTTL, time.Minute),
	}
	s.r.Use(gin.Recovery(), s.logRequests)
	s.r.POST("/execute", s.execute)
	s.r.POST("/approve", s.approve)
	s.r.POST("/faucet", s.faucet)
	s.r.GET("/get_account_info/:addr", s.cached(s.getAccountInfo))
	s.r.GET("/balance_of/:token/:addr", s.cached(s.balanceOf))
	s.r.GET("/allowance/:token/:owner/:spender", s.cached(s.allowance))
	s.r.GET("/get_receipt/:hash", s.getReceipt)
	s.r.GET("/status", s.status)
	return s
}

func (s *Server) logRequests(c *gin.Context) {
	id := uuid.NewString()
	start := time.Now()
	c.Next()
	s.log.Info("rpc request",
		zap.String("id", id),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("code", c.Writer.Status()),
		zap.Duration("took", time.Since(start)),
	)
}

// cached serves GET views from a short-lived cache keyed by URL.
func (s *Server) cached(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.URL.String()
		if v, ok := s.views.Get(key); ok {
			c.JSON(200, v)
			return
		}
		h(c)
	}
}

func (s *Server) viewReply(c *gin.Context, body gin.H) {
	s.views.SetDefault(c.Request.URL.String(), body)
	c.JSON(200, body)
}

type receiptJSON struct {
	Hash      string         `json:"hash"`
	Caller    string         `json:"caller"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Output    [][]byte       `json:"output"`
	Transfers []transferJSON `json:"transfers"`
	Time      int64          `json:"time"`
}

type transferJSON struct {
	Token string `json:"token"`
	From  string `json:"from"`
	To    string `json:"to"`
	Value uint64 `json:"value"`
}

func encodeReceipt(rec *core.Receipt) receiptJSON {
	rj := receiptJSON{
		Hash:    hex.EncodeToString(rec.Hash[:]),
		Caller:  address.EncodeAddr(rec.Caller),
		Success: rec.Success,
		Error:   rec.Error,
		Output:  rec.Output,
		Time:    rec.Time,
	}
	for _, tr := range rec.Transfers {
		rj.Transfers = append(rj.Transfers, transferJSON{
			Token: address.EncodeAddr(tr.Token),
			From:  address.EncodeAddr(tr.From),
			To:    address.EncodeAddr(tr.To),
			Value: tr.Value,
		})
	}
	return rj
}

func (s *Server) execute(c *gin.Context) {
	var body struct {
		Request []byte `json:"request"`
	}
	c.BindJSON(&body)
	rq, err := router.DecodeRequest(bytes.NewBuffer(body.Request))
	if err != nil {
		c.JSON(200, gin.H{"status": false, "msg": err.Error()})
		return
	}
	rec, err := s.n.SubmitRequest(rq)
	if err != nil {
		c.JSON(200, gin.H{"status": false, "msg": err.Error()})
		return
	}
	c.JSON(200, gin.H{"status": true, "receipt": encodeReceipt(rec)})
}

func (s *Server) approve(c *gin.Context) {
	var body struct {
		Pubkey  []byte `json:"pubkey"`
		Sig     []byte `json:"sig"`
		Nonce   uint64 `json:"nonce"`
		Token   string `json:"token"`
		Spender string `json:"spender"`
		Amount  uint64 `json:"amount"`
	}
	c.BindJSON(&body)
	ar := &core.ApproveRequest{
		Nonce:  body.Nonce,
		Token:  core.TokenAddr(body.Token),
		Amount: body.Amount,
	}
	if len(body.Pubkey) != state.PubkeyLen || len(body.Sig) != state.SigLen {
		c.JSON(200, gin.H{"status": false, "msg": "bad pubkey or sig length"})
		return
	}
	copy(ar.SenderPubkey[:], body.Pubkey)
	copy(ar.SenderSig[:], body.Sig)
	spender, err := address.ParseAddr(body.Spender)
	if err != nil {
		c.JSON(200, gin.H{"status": false, "msg": err.Error()})
		return
	}
	ar.Spender = spender
	if err := s.n.SubmitApprove(ar); err != nil {
		c.JSON(200, gin.H{"status": false, "msg": err.Error()})
		return
	}
	c.JSON(200, gin.H{"status": true})
}

func (s *Server) faucet(c *gin.Context) {
	var body struct {
		Addr   string `json:"addr"`
		Amount uint64 `json:"amount"`
	}
	c.BindJSON(&body)
	addr, err := address.ParseAddr(body.Addr)
	if err != nil {
		c.JSON(200, gin.H{"status": false, "msg": err.Error()})
		return
	}
	if err := s.n.Faucet(addr, body.Amount); err != nil {
		c.JSON(200, gin.H{"status": false, "msg": err.Error()})
		return
	}
	c.JSON(200, gin.H{"status": true})
}

func (s *Server) getAccountInfo(c *gin.Context) {
	addr, err := address.ParseAddr(c.Param("addr"))
	if err != nil {
		c.JSON(200, gin.H{"status": false, "msg": err.Error()})
		return
	}
	s.viewReply(c, gin.H{"status": true, "data": s.n.GetAccountInfo(addr)})
}

func (s *Server) balanceOf(c *gin.Context) {
	addr, err := address.ParseAddr(c.Param("addr"))
	if err != nil {
		c.JSON(200, gin.H{"status": false, "msg": err.Error()})
		return
	}
	tk := core.TokenAddr(c.Param("token"))
	s.viewReply(c, gin.H{"status": true, "balance": s.n.GetTokenBalance(tk, addr)})
}

func (s *Server) allowance(c *gin.Context) {
	owner, err := address.ParseAddr(c.Param("owner"))
	if err != nil {
		c.JSON(200, gin.H{"status": false, "msg": err.Error()})
		return
	}
	spender, err := address.ParseAddr(c.Param("spender"))
	if err != nil {
		c.JSON(200, gin.H{"status": false, "msg": err.Error()})
		return
	}
	tk := core.TokenAddr(c.Param("token"))
	s.viewReply(c, gin.H{"status": true, "allowance": s.n.GetAllowance(tk, owner, spender)})
}

func (s *Server) getReceipt(c *gin.Context) {
	raw, err := hex.DecodeString(c.Param("hash"))
	if err != nil || len(raw) != state.HashLen {
		c.JSON(200, gin.H{"status": false, "msg": "bad receipt hash"})
		return
	}
	var h state.HashType
	copy(h[:], raw)
	rec, ok := s.n.GetReceipt(h)
	if !ok {
		c.JSON(200, gin.H{"status": false, "msg": "receipt not found"})
		return
	}
	c.JSON(200, gin.H{"status": true, "receipt": encodeReceipt(rec)})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(200, gin.H{
		"status": true,
		"router": address.EncodeAddr(s.n.RouterAddress()),
	})
}

func (s *Server) Run(addr string) error {
	ln, err := reuseport.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return http.Serve(ln, s.r)
}

// Handler exposes the raw mux for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}

package main

import (
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/vrouter-project/vrouter/core"
	"github.com/vrouter-project/vrouter/utils/routerrpc"
)

func main() {
	cfn := flag.String("config", "", "config file")
	gfn := flag.String("genesis", "", "genesis alloc file")
	rpcAddr := flag.String("rpc", ":8317", "rpc listen addr")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var c core.RouterNodeConfig
	if *cfn != "" {
		cf, err := os.ReadFile(*cfn)
		if err != nil {
			logger.Fatal("failed to read config", zap.Error(err))
		}
		if err := json.Unmarshal(cf, &c); err != nil {
			logger.Fatal("failed to parse config", zap.Error(err))
		}
	}
	if err := env.Parse(&c); err != nil {
		logger.Fatal("failed to parse config env", zap.Error(err))
	}

	var genesis *core.GenesisAlloc
	if *gfn != "" {
		gf, err := os.ReadFile(*gfn)
		if err != nil {
			logger.Fatal("failed to read genesis alloc", zap.Error(err))
		}
		genesis = &core.GenesisAlloc{}
		if err := json.Unmarshal(gf, genesis); err != nil {
			logger.Fatal("failed to parse genesis alloc", zap.Error(err))
		}
	}

	n, err := core.NewRouterNode(c, genesis)
	if err != nil {
		logger.Fatal("failed to set up node", zap.Error(err))
	}
	logger.Info("node ready",
		zap.String("router", c.RouterAddress),
		zap.Bool("allow_delegate", c.AllowDelegate),
		zap.String("rpc", *rpcAddr),
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	if c.Checkpoint.Path != "" && c.Checkpoint.Interval > 0 {
		go func() {
			t := time.NewTicker(time.Duration(c.Checkpoint.Interval * float64(time.Second)))
			defer t.Stop()
			for range t.C {
				if err := n.SaveCheckpoint(); err != nil {
					logger.Warn("checkpoint failed", zap.Error(err))
				}
			}
		}()
	}

	srv := routerrpc.NewServer(n, logger)
	go func() {
		if err := srv.Run(*rpcAddr); err != nil {
			logger.Fatal("rpc server stopped", zap.Error(err))
		}
	}()

	<-stop
	if c.Checkpoint.Path != "" {
		if err := n.SaveCheckpoint(); err != nil {
			logger.Error("final checkpoint failed", zap.Error(err))
		}
	}
	logger.Info("shutting down")
}

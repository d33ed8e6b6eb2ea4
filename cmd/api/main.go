package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openbid/openbidapi/pkg/api"
	"github.com/openbid/openbidapi/pkg/app"
	"github.com/openbid/openbidapi/pkg/auction"
	"github.com/openbid/openbidapi/pkg/config"
	"github.com/openbid/openbidapi/pkg/ledger"
	"github.com/openbid/openbidapi/pkg/pusher/sources"
)

func main() {
	cfg := config.Load()
	log := app.Logger(cfg.App.LogLevel)

	ledgerOpts := []ledger.Option{}
	if cfg.App.GenesisPath != "" {
		genesis, err := ledger.LoadGenesisFile(cfg.App.GenesisPath)
		if err != nil {
			log.Fatal("genesis load", zap.Error(err))
		}
		ledgerOpts = append(ledgerOpts, ledger.WithGenesisAccounts(genesis))
	}
	book := ledger.NewLedger(log, ledgerOpts...)

	registry := auction.NewRegistry(log, book.Clock())
	owners := auction.NewOwnershipIndex()
	feed := sources.NewBidFeed(log)
	go feed.Run(context.Background())

	engineOpts := []auction.EngineOption{auction.WithEventSink(feed)}
	if cfg.App.Admin != "" {
		engineOpts = append(engineOpts, auction.WithAdmin(cfg.App.Admin))
	}
	engine := auction.NewEngine(log, registry, book, owners, engineOpts...)

	h, err := api.NewHandler(log,
		api.WithRegistry(registry),
		api.WithEngine(engine),
		api.WithLedger(book),
	)
	if err != nil {
		log.Fatal("handler init", zap.Error(err))
	}

	go func() {
		err := http.ListenAndServe(fmt.Sprintf(":%v", cfg.App.MetricsPort), promhttp.Handler())
		log.Error("metrics server", zap.Error(err))
	}()

	server, err := api.NewServer(log, h, fmt.Sprintf(":%v", cfg.API.Port), api.WithBidSource(feed))
	if err != nil {
		log.Fatal("server init", zap.Error(err))
	}
	server.Run()
}

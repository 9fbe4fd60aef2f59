package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/franco-bianco/pumpfun-mirror/chain"
	"github.com/franco-bianco/pumpfun-mirror/config"
	"github.com/franco-bianco/pumpfun-mirror/datasource"
	"github.com/franco-bianco/pumpfun-mirror/metrics"
	"github.com/franco-bianco/pumpfun-mirror/mirror"
	"github.com/franco-bianco/pumpfun-mirror/pumpfun"
	"github.com/franco-bianco/pumpfun-mirror/relay"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Shared RPC client, safe for concurrent use.
	client := rpc.New(cfg.RPCURL)

	blockhash := chain.NewBlockhashCache(client, log)
	if err := blockhash.Refresh(ctx); err != nil {
		log.Warnf("initial blockhash fetch failed: %v", err)
	}
	go blockhash.Run(ctx, cfg.BlockhashRefresh)

	relays, err := buildRelays(cfg)
	if err != nil {
		log.Fatalf("relays: %v", err)
	}
	dispatcher := relay.NewDispatcher(cfg.PrivateKey, blockhash, relay.TipConfig{
		ComputeUnits:             cfg.ComputeUnits,
		PriorityFeeMicroLamports: cfg.PriorityFeeMicroLamports,
		TipLamports:              cfg.TipLamports,
		TipAccountIndex:          cfg.TipAccountIndex,
		TipPosition:              cfg.TipPosition,
	}, log, relays...)

	controller := mirror.New(mirror.Config{
		Wallet:      cfg.PrivateKey.PublicKey(),
		BuyLamports: cfg.BuyLamports,
		Slippage:    cfg.Slippage,
		Service:     cfg.ConfirmService,
	}, dispatcher, chain.NewBalances(client), log)

	metrics.Serve(ctx, cfg.MetricsAddr, nil, log)

	feeds := make([]datasource.Feed, 0, len(cfg.WSEndpoints))
	for _, ep := range cfg.WSEndpoints {
		feeds = append(feeds, datasource.NewLogsFeed(ep, cfg.TargetWallet))
	}
	pipeline, err := datasource.NewPipeline(client, datasource.DefaultDedupeSize, log, feeds...)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}

	log.WithFields(cfg.Fields()).Info("mirror starting")
	pipeline.Run(ctx, func(ctx context.Context, ix *pumpfun.DecodedInstruction) {
		// Outcomes and schema errors are logged by the controller.
		_, _ = controller.Process(ctx, ix)
	})
	log.Info("mirror stopped")
}

// buildRelays constructs every relay that has an endpoint configured.
func buildRelays(cfg *config.Config) ([]relay.Relay, error) {
	var out []relay.Relay
	if cfg.NozomiURL != "" {
		r, err := relay.NewNozomi(cfg.NozomiURL, cfg.NozomiAPIKey, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if cfg.ZeroSlotURL != "" {
		r, err := relay.NewZeroSlot(cfg.ZeroSlotURL, cfg.ZeroSlotAPIKey, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if cfg.JitoURL != "" {
		r, err := relay.NewJito(cfg.JitoURL, cfg.JitoUUID, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

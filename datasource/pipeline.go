package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/franco-bianco/pumpfun-mirror/metrics"
	"github.com/franco-bianco/pumpfun-mirror/pumpfun"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

const (
	DefaultDedupeSize = 4096
	fetchTimeout      = 10 * time.Second
	reconnectDelay    = time.Second
)

// TransactionFetcher is the subset of *rpc.Client used to load notified
// transactions.
type TransactionFetcher interface {
	GetTransaction(ctx context.Context, sig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
}

// Handler receives every top-level pump.fun instruction of a landed,
// successful transaction.
type Handler func(ctx context.Context, ix *pumpfun.DecodedInstruction)

// Pipeline fans several feeds into one handler. A signature delivered by
// more than one feed is handled once.
type Pipeline struct {
	feeds     []Feed
	fetcher   TransactionFetcher
	seen      *lru.Cache[solana.Signature, struct{}]
	programID solana.PublicKey
	Log       *logrus.Logger

	reconnectDelay time.Duration
}

func NewPipeline(fetcher TransactionFetcher, dedupeSize int, log *logrus.Logger, feeds ...Feed) (*Pipeline, error) {
	if dedupeSize <= 0 {
		dedupeSize = DefaultDedupeSize
	}
	seen, err := lru.New[solana.Signature, struct{}](dedupeSize)
	if err != nil {
		return nil, fmt.Errorf("signature cache: %w", err)
	}
	return &Pipeline{
		feeds:          feeds,
		fetcher:        fetcher,
		seen:           seen,
		programID:      pumpfun.PUMP_FUN_PROGRAM_ID,
		Log:            log,
		reconnectDelay: reconnectDelay,
	}, nil
}

// Run blocks until ctx is done. Cancelling ctx stops the subscriptions
// immediately; handler calls already in flight run to completion.
func (p *Pipeline) Run(ctx context.Context, handle Handler) {
	var wg sync.WaitGroup
	for _, f := range p.feeds {
		wg.Add(1)
		go func(f Feed) {
			defer wg.Done()
			p.runFeed(ctx, f, handle)
		}(f)
	}
	wg.Wait()
}

func (p *Pipeline) runFeed(ctx context.Context, f Feed, handle Handler) {
	log := p.Log.WithField("source", f.Name())
	for {
		err := f.Subscribe(ctx, func(n Notification) {
			p.handleNotification(ctx, n, handle)
		})
		if ctx.Err() != nil {
			log.Info("feed stopped")
			return
		}
		log.Warnf("feed broke, reconnecting: %v", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.reconnectDelay):
		}
	}
}

func (p *Pipeline) handleNotification(ctx context.Context, n Notification, handle Handler) {
	if dup, _ := p.seen.ContainsOrAdd(n.Signature, struct{}{}); dup {
		metrics.DuplicateSignatures.Inc()
		return
	}

	// Work on a notification is not cancelled by shutdown.
	work := context.WithoutCancel(ctx)
	tx, err := p.fetch(work, n.Signature)
	if err != nil {
		// Another source may still deliver the signature once the node has it.
		p.seen.Remove(n.Signature)
		p.Log.WithFields(logrus.Fields{"signature": n.Signature.String(), "source": n.Source}).Warnf("fetch transaction: %v", err)
		return
	}
	if tx.Failed || !mentionsProgram(tx, p.programID) {
		return
	}

	decoded, err := pumpfun.DecodeTransaction(tx)
	if err != nil {
		p.Log.WithField("signature", n.Signature.String()).Warnf("decode transaction: %v", err)
	}
	for _, ix := range decoded {
		handle(work, ix)
	}
}

func (p *Pipeline) fetch(ctx context.Context, sig solana.Signature) (*pumpfun.TransactionMeta, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	res, err := p.fetcher.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: pointer.ToUint64(0),
	})
	if err != nil {
		return nil, err
	}
	return FromRPC(sig, res)
}

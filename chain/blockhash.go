package chain

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

var errEmptyBlockhash = errors.New("chain: rpc returned no blockhash")

// BlockhashFetcher is the subset of *rpc.Client the cache refreshes through.
type BlockhashFetcher interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}

// BlockhashCache holds the most recent blockhash. Readers never block the
// refresher: every refresh swaps in a new value.
type BlockhashCache struct {
	client     BlockhashFetcher
	commitment rpc.CommitmentType
	current    atomic.Pointer[solana.Hash]
	Log        *logrus.Logger
}

func NewBlockhashCache(client BlockhashFetcher, log *logrus.Logger) *BlockhashCache {
	return &BlockhashCache{
		client:     client,
		commitment: rpc.CommitmentFinalized,
		Log:        log,
	}
}

// Get returns the cached blockhash, or false before the first successful refresh.
func (c *BlockhashCache) Get() (solana.Hash, bool) {
	h := c.current.Load()
	if h == nil {
		return solana.Hash{}, false
	}
	return *h, true
}

// Set stores h as the current blockhash.
func (c *BlockhashCache) Set(h solana.Hash) {
	c.current.Store(&h)
}

// Refresh fetches one blockhash. On failure the previous value is kept.
func (c *BlockhashCache) Refresh(ctx context.Context) error {
	res, err := c.client.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return err
	}
	if res == nil || res.Value == nil {
		return errEmptyBlockhash
	}
	c.Set(res.Value.Blockhash)
	return nil
}

// Run refreshes every interval until ctx is cancelled, starting with an
// immediate refresh.
func (c *BlockhashCache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
			c.Log.Warnf("blockhash refresh failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

package chain

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// TokenBalanceClient is the subset of *rpc.Client used for balance queries.
type TokenBalanceClient interface {
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
}

type Balances struct {
	client TokenBalanceClient
}

func NewBalances(client TokenBalanceClient) *Balances {
	return &Balances{client: client}
}

// TokenBalance returns the raw base-unit amount of a token account as the
// decimal string the node reports.
func (b *Balances) TokenBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (string, error) {
	res, err := b.client.GetTokenAccountBalance(ctx, account, commitment)
	if err != nil {
		return "", fmt.Errorf("get token balance of %s: %w", account, err)
	}
	if res == nil || res.Value == nil {
		return "", fmt.Errorf("get token balance of %s: empty result", account)
	}
	return res.Value.Amount, nil
}

package relay

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var zeroSlotTipAccounts = mustKeys(
	"Eb2KpSC8uMt9GmzyAEm5Eb1AAAgTjRaXWFjKyFXHZxF3",
	"FCjUJZ1qozm1e8romw216qyfQMaaWKxWsuySnumVCCNe",
	"ENxTEjSQ1YabmUpXAdCgevnHQ9MHdLv8tzFiuiYJqa13",
	"6rYLG55Q9RpsPGvqdPNJs4z5WTxJVatMB8zV3WJhs5EK",
	"Cix2bHfqPcKcM233mzxbLk14kSggUUiz2A87fJtGivXr",
)

// ZeroSlot submits base64 transactions to a 0slot endpoint.
type ZeroSlot struct {
	tips   tipAccounts
	client *rpc.Client
}

func NewZeroSlot(endpoint, apiKey string, client *http.Client) (*ZeroSlot, error) {
	u, err := withQuery(endpoint, "api-key", apiKey)
	if err != nil {
		return nil, fmt.Errorf("0slot endpoint: %w", err)
	}
	return &ZeroSlot{
		tips:   zeroSlotTipAccounts,
		client: rpc.NewWithCustomRPCClient(newRPCClient(u, client, nil)),
	}, nil
}

func (z *ZeroSlot) Name() string { return ZERO_SLOT }

func (z *ZeroSlot) AddTipInstructions(tips Tips) ([]solana.Instruction, error) {
	return z.tips.addTipInstructions(tips)
}

func (z *ZeroSlot) SendTransaction(ctx context.Context, raw []byte) (string, error) {
	return sendBase64(ctx, z.client, raw)
}

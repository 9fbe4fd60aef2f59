package relay

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/mr-tron/base58"
)

var jitoTipAccounts = mustKeys(
	"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
	"HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe",
	"Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY",
	"ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49",
	"DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh",
	"ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt",
	"DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL",
	"3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT",
)

const jitoTransactionsPath = "/api/v1/transactions"

// Jito submits base58 transactions to a block engine.
type Jito struct {
	tips   tipAccounts
	client jsonrpc.RPCClient
}

// NewJito targets the block engine at endpoint. A non-empty uuid is sent as
// the x-jito-auth header.
func NewJito(endpoint, uuid string, client *http.Client) (*Jito, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, fmt.Errorf("jito endpoint: %w", err)
	}
	if !strings.HasSuffix(strings.TrimRight(u.Path, "/"), jitoTransactionsPath) {
		u.Path = strings.TrimRight(u.Path, "/") + jitoTransactionsPath
	}
	var headers map[string]string
	if uuid != "" {
		headers = map[string]string{"x-jito-auth": uuid}
	}
	return &Jito{
		tips:   jitoTipAccounts,
		client: newRPCClient(u.String(), client, headers),
	}, nil
}

func (j *Jito) Name() string { return JITO }

func (j *Jito) AddTipInstructions(tips Tips) ([]solana.Instruction, error) {
	return j.tips.addTipInstructions(tips)
}

func (j *Jito) SendTransaction(ctx context.Context, raw []byte) (string, error) {
	// The block engine defaults to base58 when no encoding is given.
	var sig string
	if err := j.client.CallForInto(ctx, &sig, "sendTransaction", []any{base58.Encode(raw)}); err != nil {
		return "", err
	}
	if sig == "" {
		return "", errEmptyResult
	}
	return sig, nil
}

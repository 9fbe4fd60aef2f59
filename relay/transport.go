package relay

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

var errEmptyResult = errors.New("relay: empty sendTransaction result")

// DefaultHTTPClient is shared by relays constructed without a client.
var DefaultHTTPClient = newHTTPClient()

func newHTTPClient() *http.Client {
	tr := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   3 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		ForceAttemptHTTP2:   true,
	}
	return &http.Client{
		Timeout:   5 * time.Second,
		Transport: tr,
	}
}

// newRPCClient returns a JSON-RPC client bound to one relay endpoint. Calls
// are single attempt; headers are sent on every request.
func newRPCClient(endpoint string, client *http.Client, headers map[string]string) jsonrpc.RPCClient {
	if client == nil {
		client = DefaultHTTPClient
	}
	return jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
		HTTPClient:    client,
		CustomHeaders: headers,
	})
}

// sendBase64 is the sendTransaction call Nozomi and 0slot share.
func sendBase64(ctx context.Context, client *rpc.Client, raw []byte) (string, error) {
	sig, err := client.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		Encoding: solana.EncodingBase64,
	})
	if err != nil {
		return "", err
	}
	if sig.IsZero() {
		return "", errEmptyResult
	}
	return sig.String(), nil
}

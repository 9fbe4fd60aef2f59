package datasource

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
)

// Notification announces a landed transaction.
type Notification struct {
	Signature solana.Signature
	Slot      uint64
	Source    string
}

// Feed streams notifications until ctx is done or the stream breaks. emit
// is called serially from the Subscribe goroutine.
type Feed interface {
	Name() string
	Subscribe(ctx context.Context, emit func(Notification)) error
}

// LogsFeed subscribes to logsSubscribe mentions of one account over a
// websocket endpoint. Failed transactions are dropped at the source.
type LogsFeed struct {
	endpoint   string
	account    solana.PublicKey
	commitment rpc.CommitmentType
}

func NewLogsFeed(endpoint string, account solana.PublicKey) *LogsFeed {
	return &LogsFeed{
		endpoint:   endpoint,
		account:    account,
		commitment: rpc.CommitmentConfirmed,
	}
}

func (f *LogsFeed) Name() string { return f.endpoint }

func (f *LogsFeed) Subscribe(ctx context.Context, emit func(Notification)) error {
	client, err := ws.Connect(ctx, f.endpoint)
	if err != nil {
		return fmt.Errorf("connect %s: %w", f.endpoint, err)
	}
	defer client.Close()

	sub, err := client.LogsSubscribeMentions(f.account, f.commitment)
	if err != nil {
		return fmt.Errorf("logs subscribe %s: %w", f.account, err)
	}
	defer sub.Unsubscribe()

	for {
		got, err := sub.Recv(ctx)
		if err != nil {
			return err
		}
		if got == nil || got.Value.Err != nil {
			continue
		}
		emit(Notification{
			Signature: got.Value.Signature,
			Slot:      got.Context.Slot,
			Source:    f.endpoint,
		})
	}
}

package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var nozomiTipAccounts = mustKeys(
	"TEMPaMeCRFAS9EKF53Jd6KpHxgL47uWLcpFArU1Fanq",
	"noz3jAjPiHuBPqiSPkkugaJDkJscPuRhYnSpbi8UvC4",
	"noz3str9KXfpKknefHji8L1mPgimezaiUyCHYMDv1GE",
	"noz6uoYCDijhu1V7cutCpwxNiSovEwLdRHPwmgCGDNo",
	"noz9EPNcT7WH6Sou3sr3GGjHQYVkN3DNirpbvDkv9YJ",
	"nozc5yT15LazbLTFVZzoNZCwjh3yUtW86LoUyqsBu4L",
	"nozFrhfnNGoyqwVuwPAW4aaGqempx4PU6g6D9CJMv7Z",
	"nozievPk7HyK1Rqy1MPJwVQ7qQg2QoJGyP71oeDwbsu",
	"noznbgwYnBLDHu8wcQVCEw6kDrXkPdKkydGJGNXGvL7",
	"nozNVWs5N8mgzuD3qigrCG2UoKxZttxzZ85pvAQVrbP",
	"nozpEGbwx4BcGp6pvEdAh1JoC2CQGZdU6HbNP1v2p6P",
	"nozrhjhkCr3zXT3BiT4WCodYCUFeQvcdUkM7MqhKqge",
	"nozrwQtWhEdrA6W8dkbt9gnUaMs52PdAv5byipnadq3",
	"nozUacTVWub3cL4mJmGCYjKZTnE9RbdY5AP46iQgbPJ",
	"nozWCyTPppJjRuw2fpzDhhWbW355fzosWSzrrMYB1Qk",
	"nozWNju6dY353eMkMqURqwQEoM3SFgEKC6psLCSfUne",
	"nozxNBgWohjR75vdspfxR5H9ceC7XXH99xpxhVGt3Bb",
)

// Nozomi submits base64 transactions to a Temporal Nozomi endpoint.
type Nozomi struct {
	tips   tipAccounts
	client *rpc.Client
}

// NewNozomi authenticates with the c=<apiKey> query parameter. A nil client
// uses DefaultHTTPClient.
func NewNozomi(endpoint, apiKey string, client *http.Client) (*Nozomi, error) {
	u, err := withQuery(endpoint, "c", apiKey)
	if err != nil {
		return nil, fmt.Errorf("nozomi endpoint: %w", err)
	}
	return &Nozomi{
		tips:   nozomiTipAccounts,
		client: rpc.NewWithCustomRPCClient(newRPCClient(u, client, nil)),
	}, nil
}

func (n *Nozomi) Name() string { return NOZOMI }

func (n *Nozomi) AddTipInstructions(tips Tips) ([]solana.Instruction, error) {
	return n.tips.addTipInstructions(tips)
}

func (n *Nozomi) SendTransaction(ctx context.Context, raw []byte) (string, error) {
	return sendBase64(ctx, n.client, raw)
}

// withQuery sets key=value on rawURL, leaving it untouched for an empty value.
func withQuery(rawURL, key, value string) (string, error) {
	u, err := parseEndpoint(rawURL)
	if err != nil {
		return "", err
	}
	if value == "" {
		return u.String(), nil
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func parseEndpoint(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}
	return u, nil
}

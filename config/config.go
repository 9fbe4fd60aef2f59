// Package config loads the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/franco-bianco/pumpfun-mirror/relay"
	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Config is built once at startup and passed down by reference.
type Config struct {
	RPCURL      string
	WSEndpoints []string

	TargetWallet solana.PublicKey
	PrivateKey   solana.PrivateKey

	BuyLamports uint64
	Slippage    float64

	// PRIORITY_FEE
	ComputeUnits             uint32
	PriorityFeeMicroLamports uint64
	TipLamports              uint64
	TipAccountIndex          int
	// TipPosition places the tip among the trade instructions; nil appends.
	TipPosition              *int

	ConfirmService string
	NozomiURL      string
	NozomiAPIKey   string
	ZeroSlotURL    string
	ZeroSlotAPIKey string
	JitoURL        string
	JitoUUID       string

	BlockhashRefresh time.Duration
	MetricsAddr      string
	LogLevel         logrus.Level
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, which has the signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	env := envReader{lookup: lookup}

	cfg := &Config{
		RPCURL:         env.get("RPC_URL", ""),
		WSEndpoints:    splitList(env.get("WS_ENDPOINTS", "")),
		ConfirmService: strings.ToUpper(env.get("CONFIRM_SERVICE", relay.NOZOMI)),
		NozomiURL:      env.get("NOZOMI_URL", ""),
		NozomiAPIKey:   env.get("NOZOMI_API_KEY", ""),
		ZeroSlotURL:    env.get("ZERO_SLOT_URL", ""),
		ZeroSlotAPIKey: env.get("ZERO_SLOT_API_KEY", ""),
		JitoURL:        env.get("JITO_URL", ""),
		JitoUUID:       env.get("JITO_UUID", ""),
	}

	// METRICS_ADDR set to the empty string disables the server.
	cfg.MetricsAddr = ":9090"
	if v, ok := lookup("METRICS_ADDR"); ok {
		cfg.MetricsAddr = strings.TrimSpace(v)
	}

	var err error
	if cfg.TargetWallet, err = parseWallet("TARGET_WALLET", env.get("TARGET_WALLET", "")); err != nil {
		return nil, err
	}
	if cfg.PrivateKey, err = parsePrivateKey(env.get("PRIVATE_KEY", "")); err != nil {
		return nil, err
	}
	if cfg.BuyLamports, err = solToLamports("BUY_SOL_AMOUNT", env.get("BUY_SOL_AMOUNT", "0.01")); err != nil {
		return nil, err
	}
	if cfg.Slippage, err = parseSlippage(env.get("SLIPPAGE", "0.1")); err != nil {
		return nil, err
	}
	if err := cfg.parsePriorityFee(env.get("PRIORITY_FEE", "120000,1000000,0.001")); err != nil {
		return nil, err
	}
	if cfg.TipAccountIndex, err = strconv.Atoi(env.get("TIP_ACCOUNT_INDEX", "1")); err != nil {
		return nil, fmt.Errorf("TIP_ACCOUNT_INDEX: %w", err)
	}
	if v := env.get("TIP_POSITION", ""); v != "" {
		pos, err := strconv.Atoi(v)
		if err != nil || pos < 0 {
			return nil, fmt.Errorf("TIP_POSITION must be a non-negative integer, got %q", v)
		}
		cfg.TipPosition = pointer.ToInt(pos)
	}

	ms, err := strconv.ParseUint(env.get("BLOCKHASH_REFRESH_MS", "400"), 10, 32)
	if err != nil || ms == 0 {
		return nil, fmt.Errorf("BLOCKHASH_REFRESH_MS must be a positive integer")
	}
	cfg.BlockhashRefresh = time.Duration(ms) * time.Millisecond

	if cfg.LogLevel, err = logrus.ParseLevel(env.get("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that required values are set and the selected relay is configured.
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL is required")
	}
	if len(c.WSEndpoints) == 0 {
		return fmt.Errorf("WS_ENDPOINTS is required")
	}
	if c.BuyLamports == 0 {
		return fmt.Errorf("BUY_SOL_AMOUNT must be positive")
	}

	switch c.ConfirmService {
	case relay.NOZOMI:
		if c.NozomiURL == "" {
			return fmt.Errorf("NOZOMI_URL is required when CONFIRM_SERVICE=%s", c.ConfirmService)
		}
	case relay.ZERO_SLOT:
		if c.ZeroSlotURL == "" {
			return fmt.Errorf("ZERO_SLOT_URL is required when CONFIRM_SERVICE=%s", c.ConfirmService)
		}
	case relay.JITO:
		if c.JitoURL == "" {
			return fmt.Errorf("JITO_URL is required when CONFIRM_SERVICE=%s", c.ConfirmService)
		}
	}
	// Unknown services are left to the dispatcher, which reports them per trade.
	return nil
}

// Fields renders the configuration for the startup log with secrets masked.
func (c *Config) Fields() logrus.Fields {
	return logrus.Fields{
		"rpc":              c.RPCURL,
		"ws_endpoints":     len(c.WSEndpoints),
		"target":           c.TargetWallet.String(),
		"wallet":           c.PrivateKey.PublicKey().String(),
		"buy_lamports":     c.BuyLamports,
		"slippage":         c.Slippage,
		"compute_units":    c.ComputeUnits,
		"priority_fee":     c.PriorityFeeMicroLamports,
		"tip_lamports":     c.TipLamports,
		"tip_position":     tipPosition(c.TipPosition),
		"service":          c.ConfirmService,
		"nozomi_key":       maskSecret(c.NozomiAPIKey),
		"zero_slot_key":    maskSecret(c.ZeroSlotAPIKey),
		"jito_uuid":        maskSecret(c.JitoUUID),
		"blockhash_period": c.BlockhashRefresh,
	}
}

func tipPosition(p *int) string {
	if p == nil {
		return "append"
	}
	return strconv.Itoa(*p)
}

func (c *Config) parsePriorityFee(v string) error {
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return fmt.Errorf("PRIORITY_FEE must be cu,micro_lamports_per_cu,tip_sol; got %q", v)
	}
	cu, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return fmt.Errorf("PRIORITY_FEE compute units: %w", err)
	}
	fee, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return fmt.Errorf("PRIORITY_FEE micro-lamports: %w", err)
	}
	tip, err := solToLamports("PRIORITY_FEE tip", strings.TrimSpace(parts[2]))
	if err != nil {
		return err
	}
	c.ComputeUnits = uint32(cu)
	c.PriorityFeeMicroLamports = fee
	c.TipLamports = tip
	return nil
}

type envReader struct {
	lookup func(string) (string, bool)
}

// get returns the trimmed value of key, or def when unset or empty.
func (e envReader) get(key, def string) string {
	if v, ok := e.lookup(key); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return def
}

var lamportsPerSol = decimal.New(1, 9)

// solToLamports converts a decimal SOL amount to lamports without rounding.
func solToLamports(key, v string) (uint64, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid SOL amount %q", key, v)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%s: negative SOL amount %q", key, v)
	}
	lamports := d.Mul(lamportsPerSol)
	if !lamports.Equal(lamports.Truncate(0)) {
		return 0, fmt.Errorf("%s: %q has more than 9 decimal places", key, v)
	}
	if !lamports.BigInt().IsUint64() {
		return 0, fmt.Errorf("%s: %q is out of range", key, v)
	}
	return lamports.BigInt().Uint64(), nil
}

func parseSlippage(v string) (float64, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, fmt.Errorf("SLIPPAGE: invalid fraction %q", v)
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("SLIPPAGE must be in [0, 1); got %q", v)
	}
	return d.InexactFloat64(), nil
}

func parseWallet(key, v string) (solana.PublicKey, error) {
	if v == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", key)
	}
	pk, err := solana.PublicKeyFromBase58(v)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s: %w", key, err)
	}
	return pk, nil
}

func parsePrivateKey(v string) (solana.PrivateKey, error) {
	if v == "" {
		return nil, fmt.Errorf("PRIVATE_KEY is required")
	}
	pk, err := solana.PrivateKeyFromBase58(v)
	if err != nil {
		return nil, fmt.Errorf("PRIVATE_KEY: invalid base58 key")
	}
	if len(pk) != 64 {
		return nil, fmt.Errorf("PRIVATE_KEY: want 64 bytes, got %d", len(pk))
	}
	return pk, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// maskSecret hides all but the first and last 4 characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

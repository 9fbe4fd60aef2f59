package config

import (
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env map[string]string

func (e env) lookup(k string) (string, bool) {
	v, ok := e[k]
	return v, ok
}

func baseEnv() env {
	return env{
		"RPC_URL":        "https://rpc.example",
		"WS_ENDPOINTS":   "wss://a.example, wss://b.example,",
		"TARGET_WALLET":  solana.NewWallet().PublicKey().String(),
		"PRIVATE_KEY":    solana.NewWallet().PrivateKey.String(),
		"NOZOMI_URL":     "https://nozomi.example",
		"NOZOMI_API_KEY": "abcdefghijkl",
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	e := baseEnv()
	cfg, err := FromLookup(e.lookup)
	require.NoError(t, err)

	assert.Equal(t, []string{"wss://a.example", "wss://b.example"}, cfg.WSEndpoints)
	assert.EqualValues(t, 10_000_000, cfg.BuyLamports)
	assert.Equal(t, 0.1, cfg.Slippage)
	assert.EqualValues(t, 120_000, cfg.ComputeUnits)
	assert.EqualValues(t, 1_000_000, cfg.PriorityFeeMicroLamports)
	assert.EqualValues(t, 1_000_000, cfg.TipLamports)
	assert.Equal(t, 1, cfg.TipAccountIndex)
	assert.Nil(t, cfg.TipPosition, "tip appended by default")
	assert.Equal(t, "NOZOMI", cfg.ConfirmService)
	assert.Equal(t, 400*time.Millisecond, cfg.BlockhashRefresh)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, e["TARGET_WALLET"], cfg.TargetWallet.String())
}

func TestFromLookup_Overrides(t *testing.T) {
	e := baseEnv()
	e["BUY_SOL_AMOUNT"] = "1.5"
	e["SLIPPAGE"] = "0.25"
	e["PRIORITY_FEE"] = "200000, 5000, 0.0001"
	e["CONFIRM_SERVICE"] = "jito"
	e["JITO_URL"] = "https://mainnet.block-engine.jito.wtf"
	e["METRICS_ADDR"] = ""
	e["LOG_LEVEL"] = "debug"
	e["TIP_POSITION"] = "0"

	cfg, err := FromLookup(e.lookup)
	require.NoError(t, err)
	require.NotNil(t, cfg.TipPosition)
	assert.Equal(t, 0, *cfg.TipPosition)
	assert.EqualValues(t, 1_500_000_000, cfg.BuyLamports)
	assert.Equal(t, 0.25, cfg.Slippage)
	assert.EqualValues(t, 200_000, cfg.ComputeUnits)
	assert.EqualValues(t, 5_000, cfg.PriorityFeeMicroLamports)
	assert.EqualValues(t, 100_000, cfg.TipLamports)
	assert.Equal(t, "JITO", cfg.ConfirmService)
	assert.Empty(t, cfg.MetricsAddr, "empty METRICS_ADDR disables the server")
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
}

func TestFromLookup_Errors(t *testing.T) {
	cases := []struct {
		key, value, want string
	}{
		{"RPC_URL", "", "RPC_URL"},
		{"WS_ENDPOINTS", " , ", "WS_ENDPOINTS"},
		{"TARGET_WALLET", "not-a-key", "TARGET_WALLET"},
		{"PRIVATE_KEY", "", "PRIVATE_KEY"},
		{"BUY_SOL_AMOUNT", "abc", "BUY_SOL_AMOUNT"},
		{"BUY_SOL_AMOUNT", "-1", "BUY_SOL_AMOUNT"},
		{"BUY_SOL_AMOUNT", "0.0000000001", "BUY_SOL_AMOUNT"},
		{"BUY_SOL_AMOUNT", "0", "BUY_SOL_AMOUNT"},
		{"SLIPPAGE", "1", "SLIPPAGE"},
		{"PRIORITY_FEE", "1,2", "PRIORITY_FEE"},
		{"PRIORITY_FEE", "x,2,0.1", "PRIORITY_FEE"},
		{"TIP_POSITION", "-1", "TIP_POSITION"},
		{"TIP_POSITION", "first", "TIP_POSITION"},
		{"BLOCKHASH_REFRESH_MS", "0", "BLOCKHASH_REFRESH_MS"},
		{"LOG_LEVEL", "loud", "LOG_LEVEL"},
		{"NOZOMI_URL", "", "NOZOMI_URL"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			e := baseEnv()
			e[tc.key] = tc.value
			_, err := FromLookup(e.lookup)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.want), err.Error())
		})
	}
}

func TestFromLookup_UnknownServiceLeftToDispatcher(t *testing.T) {
	e := baseEnv()
	e["CONFIRM_SERVICE"] = "FOO"
	cfg, err := FromLookup(e.lookup)
	require.NoError(t, err)
	assert.Equal(t, "FOO", cfg.ConfirmService)
}

func TestFields_MasksSecrets(t *testing.T) {
	cfg, err := FromLookup(baseEnv().lookup)
	require.NoError(t, err)
	f := cfg.Fields()
	assert.Equal(t, "abcd****ijkl", f["nozomi_key"])
	assert.Equal(t, "(not set)", f["jito_uuid"])
	assert.NotContains(t, f, "private_key")
}

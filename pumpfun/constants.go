package pumpfun

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

var (
	PUMP_FUN_PROGRAM_ID         = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	PUMP_FUN_EVENT_AUTHORITY    = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")
	PUMP_FUN_GLOBAL             = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")
	PUMP_FUN_FEE_RECIPIENT      = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")
	ASSOCIATED_TOKEN_PROGRAM_ID = solana.SPLAssociatedTokenAccountProgramID
)

// Anchor discriminators: first 8 bytes of sha256("<namespace>:<name>").
var (
	BuyDiscriminator  = anchorDiscriminator8("global", "buy")
	SellDiscriminator = anchorDiscriminator8("global", "sell")

	// EventIxTag prefixes every self-CPI emitted by emit_cpi!. It is the
	// little-endian u64 of sha256("anchor:event")[:8].
	EventIxTag = [8]byte{228, 69, 165, 46, 81, 203, 154, 29}

	TradeEventDiscriminator = anchorDiscriminator8("event", "TradeEvent")
)

func anchorDiscriminator8(namespace, name string) [8]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

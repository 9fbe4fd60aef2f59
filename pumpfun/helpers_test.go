package pumpfun

import (
	"bytes"
	"testing"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

func encodeTradeEvent(t *testing.T, ev TradeEvent) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	buf.Write(EventIxTag[:])
	buf.Write(TradeEventDiscriminator[:])
	if err := ag_binary.NewBorshEncoder(buf).Encode(ev); err != nil {
		t.Fatalf("encode trade event: %v", err)
	}
	return buf.Bytes()
}

// txFixture lays out the account table of a pump.fun trade by trader.
type txFixture struct {
	tx *TransactionMeta

	trader, mint, bondingCurve, assocCurve, traderATA, creatorVault solana.PublicKey
}

const (
	idxTrader = iota
	idxFeeRecipient
	idxMint
	idxBondingCurve
	idxAssocCurve
	idxTraderATA
	idxCreatorVault
	idxGlobal
	idxSystem
	idxToken
	idxEventAuthority
	idxProgram
	idxOther
)

func newTxFixture() *txFixture {
	f := &txFixture{
		trader:       newKey(),
		mint:         newKey(),
		bondingCurve: newKey(),
		assocCurve:   newKey(),
		traderATA:    newKey(),
		creatorVault: newKey(),
	}
	keys := solana.PublicKeySlice{
		idxTrader:         f.trader,
		idxFeeRecipient:   PUMP_FUN_FEE_RECIPIENT,
		idxMint:           f.mint,
		idxBondingCurve:   f.bondingCurve,
		idxAssocCurve:     f.assocCurve,
		idxTraderATA:      f.traderATA,
		idxCreatorVault:   f.creatorVault,
		idxGlobal:         PUMP_FUN_GLOBAL,
		idxSystem:         solana.SystemProgramID,
		idxToken:          solana.TokenProgramID,
		idxEventAuthority: PUMP_FUN_EVENT_AUTHORITY,
		idxProgram:        PUMP_FUN_PROGRAM_ID,
		idxOther:          newKey(),
	}
	f.tx = &TransactionMeta{
		Signature:   solana.Signature{1, 2, 3},
		AccountKeys: keys,
	}
	return f
}

// buyAccountIndices is the buy layout expressed as indices into the fixture keys.
var buyAccountIndices = []uint16{
	idxGlobal, idxFeeRecipient, idxMint, idxBondingCurve, idxAssocCurve, idxTraderATA,
	idxTrader, idxSystem, idxToken, idxCreatorVault, idxEventAuthority, idxProgram,
}

var sellAccountIndices = []uint16{
	idxGlobal, idxFeeRecipient, idxMint, idxBondingCurve, idxAssocCurve, idxTraderATA,
	idxTrader, idxSystem, idxCreatorVault, idxToken, idxEventAuthority, idxProgram,
}

func (f *txFixture) withOuter(disc [8]byte, indices []uint16, a, b uint64) *txFixture {
	data := encodeArgs(disc, a, b)
	f.tx.Instructions = append(f.tx.Instructions, solana.CompiledInstruction{
		ProgramIDIndex: idxProgram,
		Accounts:       indices,
		Data:           data,
	})
	return f
}

func (f *txFixture) withInner(outer uint16, ixs ...solana.CompiledInstruction) *txFixture {
	f.tx.InnerInstructions = append(f.tx.InnerInstructions, InnerInstructionGroup{
		Index:        outer,
		Instructions: ixs,
	})
	return f
}

func eventCPI(data []byte) solana.CompiledInstruction {
	return solana.CompiledInstruction{
		ProgramIDIndex: idxProgram,
		Accounts:       []uint16{idxEventAuthority},
		Data:           data,
	}
}

func (f *txFixture) sampleEvent(isBuy bool) TradeEvent {
	return TradeEvent{
		Mint:                  f.mint,
		SolAmount:             1_000_000_000,
		TokenAmount:           34_000_000_000_000,
		IsBuy:                 isBuy,
		User:                  f.trader,
		Timestamp:             1_735_689_600,
		VirtualSolReserves:    30_000_000_000,
		VirtualTokenReserves:  1_073_000_000_000_000,
		RealSolReserves:       1_000_000_000,
		RealTokenReserves:     793_100_000_000_000,
		FeeRecipient:          PUMP_FUN_FEE_RECIPIENT,
		FeeBasisPoints:        95,
		Fee:                   9_500_000,
		Creator:               newKey(),
		CreatorFeeBasisPoints: 5,
		CreatorFee:            500_000,
	}
}

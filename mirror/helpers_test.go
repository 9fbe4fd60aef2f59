package mirror

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/franco-bianco/pumpfun-mirror/pumpfun"
	"github.com/franco-bianco/pumpfun-mirror/relay"
	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	calls [][]solana.Instruction
	svc   []string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, service string, ixs []solana.Instruction) relay.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, ixs)
	d.svc = append(d.svc, service)
	return relay.Result{Service: service, OK: true, ID: "sig", Stage: relay.StageSubmit}
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type stubBalances struct {
	amount string
	err    error

	mu    sync.Mutex
	asked []solana.PublicKey
}

func (b *stubBalances) TokenBalance(_ context.Context, account solana.PublicKey, _ rpc.CommitmentType) (string, error) {
	b.mu.Lock()
	b.asked = append(b.asked, account)
	b.mu.Unlock()
	return b.amount, b.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newKey() solana.PublicKey { return solana.NewWallet().PublicKey() }

// Account table positions of the synthetic trade.
const (
	kTrader = iota
	kFeeRecipient
	kMint
	kCurve
	kAssocCurve
	kTraderATA
	kCreatorVault
	kGlobal
	kSystem
	kToken
	kEventAuthority
	kProgram
	kForeign
)

type trade struct {
	keys  solana.PublicKeySlice
	event pumpfun.TradeEvent
}

func newTrade(isBuy bool, vsol, vtok uint64) *trade {
	keys := solana.PublicKeySlice{
		kTrader:         newKey(),
		kFeeRecipient:   pumpfun.PUMP_FUN_FEE_RECIPIENT,
		kMint:           newKey(),
		kCurve:          newKey(),
		kAssocCurve:     newKey(),
		kTraderATA:      newKey(),
		kCreatorVault:   newKey(),
		kGlobal:         pumpfun.PUMP_FUN_GLOBAL,
		kSystem:         solana.SystemProgramID,
		kToken:          solana.TokenProgramID,
		kEventAuthority: pumpfun.PUMP_FUN_EVENT_AUTHORITY,
		kProgram:        pumpfun.PUMP_FUN_PROGRAM_ID,
		kForeign:        newKey(),
	}
	return &trade{
		keys: keys,
		event: pumpfun.TradeEvent{
			Mint:                 keys[kMint],
			SolAmount:            1_000_000_000,
			TokenAmount:          30_000_000_000_000,
			IsBuy:                isBuy,
			User:                 keys[kTrader],
			Timestamp:            1_735_689_600,
			VirtualSolReserves:   vsol,
			VirtualTokenReserves: vtok,
			FeeRecipient:         pumpfun.PUMP_FUN_FEE_RECIPIENT,
			Creator:              newKey(),
		},
	}
}

func (tr *trade) eventPayload(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	buf.Write(pumpfun.EventIxTag[:])
	buf.Write(pumpfun.TradeEventDiscriminator[:])
	if err := ag_binary.NewBorshEncoder(buf).Encode(tr.event); err != nil {
		t.Fatalf("encode event: %v", err)
	}
	return buf.Bytes()
}

// decoded builds the decoded instruction the datasource would hand over,
// with inner as the CPIs of the single outer instruction.
func (tr *trade) decoded(t *testing.T, kind pumpfun.InstructionKind, inner ...solana.CompiledInstruction) *pumpfun.DecodedInstruction {
	t.Helper()
	order := []uint16{kGlobal, kFeeRecipient, kMint, kCurve, kAssocCurve, kTraderATA, kTrader, kSystem, kToken, kCreatorVault, kEventAuthority, kProgram}
	if kind == pumpfun.KindSell {
		order = []uint16{kGlobal, kFeeRecipient, kMint, kCurve, kAssocCurve, kTraderATA, kTrader, kSystem, kCreatorVault, kToken, kEventAuthority, kProgram}
	}
	accounts := make([]*solana.AccountMeta, len(order))
	for i, k := range order {
		accounts[i] = solana.Meta(tr.keys[k])
	}
	tx := &pumpfun.TransactionMeta{
		Signature:    solana.Signature{4, 2},
		AccountKeys:  tr.keys,
		Instructions: []solana.CompiledInstruction{{ProgramIDIndex: kProgram, Accounts: order}},
	}
	if len(inner) > 0 {
		tx.InnerInstructions = []pumpfun.InnerInstructionGroup{{Index: 0, Instructions: inner}}
	}
	return &pumpfun.DecodedInstruction{Kind: kind, Accounts: accounts, Index: 0, Tx: tx}
}

func (tr *trade) eventCPI(t *testing.T) solana.CompiledInstruction {
	return solana.CompiledInstruction{
		ProgramIDIndex: kProgram,
		Accounts:       []uint16{kEventAuthority},
		Data:           tr.eventPayload(t),
	}
}

func countingQuote(n *int, f QuoteFunc) QuoteFunc {
	return func(a, s, k uint64, isBuy bool) (uint64, error) {
		*n++
		return f(a, s, k, isBuy)
	}
}

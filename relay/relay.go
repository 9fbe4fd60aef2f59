package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
)

// Service names accepted by the dispatcher.
const (
	NOZOMI    = "NOZOMI"
	ZERO_SLOT = "ZERO_SLOT"
	JITO      = "JITO"
)

var ErrTipPosition = errors.New("relay: tip position out of range")

// Relay is an accelerated-inclusion service: it knows where tips go and how
// to submit a signed transaction.
type Relay interface {
	Name() string
	AddTipInstructions(tips Tips) ([]solana.Instruction, error)
	SendTransaction(ctx context.Context, raw []byte) (string, error)
}

// Tips describes the compute budget and tip to wrap around Instructions.
type Tips struct {
	ComputeUnits             *uint32
	PriorityFeeMicroLamports *uint64
	Payer                    solana.PublicKey
	Instructions             []solana.Instruction

	// TipAccountIndex selects the tip account, modulo the relay's list.
	TipAccountIndex int
	TipLamports     uint64

	// TipPosition is the index among Instructions the tip transfer is
	// inserted at. Nil appends it.
	TipPosition *int
}

// tipAccounts is the tip-injection step shared by every backend.
type tipAccounts []solana.PublicKey

func (t tipAccounts) pick(index int) solana.PublicKey {
	n := len(t)
	i := index % n
	if i < 0 {
		i += n
	}
	return t[i]
}

func (t tipAccounts) addTipInstructions(tips Tips) ([]solana.Instruction, error) {
	out := make([]solana.Instruction, 0, len(tips.Instructions)+3)

	if tips.ComputeUnits != nil {
		ix, err := computebudget.NewSetComputeUnitLimitInstruction(*tips.ComputeUnits).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("compute unit limit: %w", err)
		}
		out = append(out, ix)
	}
	if tips.PriorityFeeMicroLamports != nil {
		ix, err := computebudget.NewSetComputeUnitPriceInstruction(*tips.PriorityFeeMicroLamports).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("compute unit price: %w", err)
		}
		out = append(out, ix)
	}

	tip, err := system.NewTransferInstruction(tips.TipLamports, tips.Payer, t.pick(tips.TipAccountIndex)).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("tip transfer: %w", err)
	}

	pos := len(tips.Instructions)
	if tips.TipPosition != nil {
		pos = *tips.TipPosition
		if pos < 0 || pos > len(tips.Instructions) {
			return nil, fmt.Errorf("%w: %d of %d", ErrTipPosition, pos, len(tips.Instructions))
		}
	}
	out = append(out, tips.Instructions[:pos]...)
	out = append(out, tip)
	out = append(out, tips.Instructions[pos:]...)
	return out, nil
}

func mustKeys(addrs ...string) tipAccounts {
	out := make(tipAccounts, len(addrs))
	for i, a := range addrs {
		out[i] = solana.MustPublicKeyFromBase58(a)
	}
	return out
}

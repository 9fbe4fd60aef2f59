package pumpfun

import (
	"bytes"
	"errors"
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrMalformedTradeEvent marks an inner instruction that carries the event
// tag but whose payload does not decode as a TradeEvent.
var ErrMalformedTradeEvent = errors.New("pumpfun: malformed trade event")

// TradeEvent is the event the program emits through a self-CPI on every trade.
type TradeEvent struct {
	Mint                  solana.PublicKey
	SolAmount             uint64
	TokenAmount           uint64
	IsBuy                 bool
	User                  solana.PublicKey
	Timestamp             int64
	VirtualSolReserves    uint64
	VirtualTokenReserves  uint64
	RealSolReserves       uint64
	RealTokenReserves     uint64
	FeeRecipient          solana.PublicKey
	FeeBasisPoints        uint64
	Fee                   uint64
	Creator               solana.PublicKey
	CreatorFeeBasisPoints uint64
	CreatorFee            uint64
}

// InnerInstructionGroup holds the CPIs executed under one top-level instruction.
type InnerInstructionGroup struct {
	Index        uint16
	Instructions []solana.CompiledInstruction
}

// TransactionMeta is the part of a landed transaction the processor needs.
type TransactionMeta struct {
	Signature solana.Signature
	Slot      uint64

	// AccountKeys is the full lookup table: static keys, then loaded
	// writable, then loaded read-only addresses.
	AccountKeys       solana.PublicKeySlice
	Instructions      []solana.CompiledInstruction
	InnerInstructions []InnerInstructionGroup
	Failed            bool

	// InnerUnindexed is set by feeds that deliver inner groups in order
	// without outer indices. Index is then meaningless and the first group
	// belongs to the instruction being processed.
	InnerUnindexed bool
}

// Key resolves an account index, reporting false for out-of-range indices.
func (m *TransactionMeta) Key(index uint16) (solana.PublicKey, bool) {
	if m == nil || int(index) >= len(m.AccountKeys) {
		return solana.PublicKey{}, false
	}
	return m.AccountKeys[index], true
}

// InnerGroup returns the CPIs emitted under the top-level instruction at outerIndex.
func (m *TransactionMeta) InnerGroup(outerIndex int) []solana.CompiledInstruction {
	if m == nil || outerIndex < 0 {
		return nil
	}
	if m.InnerUnindexed {
		if len(m.InnerInstructions) == 0 {
			return nil
		}
		return m.InnerInstructions[0].Instructions
	}
	for _, g := range m.InnerInstructions {
		if int(g.Index) == outerIndex {
			return g.Instructions
		}
	}
	return nil
}

// FindTradeEvent locates the TradeEvent self-CPI under the top-level
// instruction at outerIndex. It returns (nil, nil) when the instruction did
// not emit one, and an error wrapping ErrMalformedTradeEvent when the
// payload carries the event tag but cannot be decoded.
//
// Only the first matching CPI is considered.
func FindTradeEvent(tx *TransactionMeta, outerIndex int, programID, eventAuthority solana.PublicKey) (*TradeEvent, error) {
	cpi, ok := findEventCPI(tx, outerIndex, programID, eventAuthority)
	if !ok {
		return nil, nil
	}

	data := []byte(cpi.Data)
	if len(data) < len(EventIxTag) || !bytes.Equal(data[:len(EventIxTag)], EventIxTag[:]) {
		return nil, nil
	}
	if len(data) < 16 {
		return nil, fmt.Errorf("%w: payload is %d bytes", ErrMalformedTradeEvent, len(data))
	}
	if !bytes.Equal(data[8:16], TradeEventDiscriminator[:]) {
		// Another event type emitted by the same program.
		return nil, nil
	}

	var ev TradeEvent
	if err := ag_binary.NewBorshDecoder(data[16:]).Decode(&ev); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedTradeEvent, err)
	}
	return &ev, nil
}

func findEventCPI(tx *TransactionMeta, outerIndex int, programID, eventAuthority solana.PublicKey) (solana.CompiledInstruction, bool) {
	for _, inner := range tx.InnerGroup(outerIndex) {
		progID, ok := tx.Key(inner.ProgramIDIndex)
		if !ok || !progID.Equals(programID) {
			continue
		}
		if len(inner.Accounts) == 0 {
			continue
		}
		first, ok := tx.Key(inner.Accounts[0])
		if !ok || !first.Equals(eventAuthority) {
			continue
		}
		return inner, true
	}
	return solana.CompiledInstruction{}, false
}

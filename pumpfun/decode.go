package pumpfun

import (
	"bytes"
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

type InstructionKind string

const (
	KindBuy   InstructionKind = "buy"
	KindSell  InstructionKind = "sell"
	KindOther InstructionKind = "other"
)

// DecodedInstruction is one top-level program instruction of a landed
// transaction, with its accounts resolved.
type DecodedInstruction struct {
	Kind     InstructionKind
	Buy      *BuyArgs
	Sell     *SellArgs
	Accounts []*solana.AccountMeta

	// Index is the position of the instruction in the transaction message;
	// it selects the inner-instruction group.
	Index int
	Tx    *TransactionMeta
}

// DecodeInstruction decodes the top-level instruction at index. Instructions
// of other programs return an error; unknown program instructions decode as
// KindOther.
func DecodeInstruction(tx *TransactionMeta, index int) (*DecodedInstruction, error) {
	if tx == nil || index < 0 || index >= len(tx.Instructions) {
		return nil, fmt.Errorf("instruction index %d out of range", index)
	}
	compiled := tx.Instructions[index]

	progID, ok := tx.Key(compiled.ProgramIDIndex)
	if !ok {
		return nil, fmt.Errorf("instruction %d: program id index %d out of range", index, compiled.ProgramIDIndex)
	}
	if !progID.Equals(PUMP_FUN_PROGRAM_ID) {
		return nil, fmt.Errorf("instruction %d: program %s is not pump.fun", index, progID)
	}

	accounts := make([]*solana.AccountMeta, 0, len(compiled.Accounts))
	for _, ai := range compiled.Accounts {
		key, ok := tx.Key(ai)
		if !ok {
			return nil, fmt.Errorf("instruction %d: account index %d out of range", index, ai)
		}
		accounts = append(accounts, solana.Meta(key))
	}

	out := &DecodedInstruction{
		Kind:     KindOther,
		Accounts: accounts,
		Index:    index,
		Tx:       tx,
	}

	data := []byte(compiled.Data)
	if len(data) < 8 {
		return out, nil
	}
	disc, body := data[:8], data[8:]
	switch {
	case bytes.Equal(disc, BuyDiscriminator[:]):
		var args BuyArgs
		if err := ag_binary.NewBorshDecoder(body).Decode(&args); err != nil {
			return nil, fmt.Errorf("instruction %d: decode buy args: %w", index, err)
		}
		out.Kind = KindBuy
		out.Buy = &args
	case bytes.Equal(disc, SellDiscriminator[:]):
		var args SellArgs
		if err := ag_binary.NewBorshDecoder(body).Decode(&args); err != nil {
			return nil, fmt.Errorf("instruction %d: decode sell args: %w", index, err)
		}
		out.Kind = KindSell
		out.Sell = &args
	}
	return out, nil
}

// DecodeTransaction decodes every top-level pump.fun instruction of tx.
func DecodeTransaction(tx *TransactionMeta) ([]*DecodedInstruction, error) {
	var out []*DecodedInstruction
	for i, compiled := range tx.Instructions {
		progID, ok := tx.Key(compiled.ProgramIDIndex)
		if !ok || !progID.Equals(PUMP_FUN_PROGRAM_ID) {
			continue
		}
		ix, err := DecodeInstruction(tx, i)
		if err != nil {
			return out, err
		}
		out = append(out, ix)
	}
	return out, nil
}

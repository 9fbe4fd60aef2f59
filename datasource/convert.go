package datasource

import (
	"errors"
	"fmt"

	"github.com/franco-bianco/pumpfun-mirror/pumpfun"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var ErrEmptyTransaction = errors.New("datasource: transaction result has no body")

// FromRPC converts a getTransaction result into the processor's view of a
// landed transaction.
func FromRPC(sig solana.Signature, res *rpc.GetTransactionResult) (*pumpfun.TransactionMeta, error) {
	if res == nil || res.Transaction == nil {
		return nil, ErrEmptyTransaction
	}
	tx, err := res.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return fromTransaction(sig, res.Slot, tx, res.Meta), nil
}

func fromTransaction(sig solana.Signature, slot uint64, tx *solana.Transaction, meta *rpc.TransactionMeta) *pumpfun.TransactionMeta {
	// Static keys, then loaded writable, then loaded read-only: the order
	// compiled indices refer to.
	keys := make(solana.PublicKeySlice, 0, len(tx.Message.AccountKeys))
	keys = append(keys, tx.Message.AccountKeys...)

	out := &pumpfun.TransactionMeta{
		Signature:    sig,
		Slot:         slot,
		Instructions: tx.Message.Instructions,
	}
	if meta != nil {
		keys = append(keys, meta.LoadedAddresses.Writable...)
		keys = append(keys, meta.LoadedAddresses.ReadOnly...)
		out.Failed = meta.Err != nil

		out.InnerInstructions = make([]pumpfun.InnerInstructionGroup, 0, len(meta.InnerInstructions))
		for _, inner := range meta.InnerInstructions {
			group := pumpfun.InnerInstructionGroup{
				Index:        inner.Index,
				Instructions: make([]solana.CompiledInstruction, len(inner.Instructions)),
			}
			for i, ix := range inner.Instructions {
				group.Instructions[i] = convertRPCInstruction(ix)
			}
			out.InnerInstructions = append(out.InnerInstructions, group)
		}
	}
	out.AccountKeys = keys
	if sig == (solana.Signature{}) && len(tx.Signatures) > 0 {
		out.Signature = tx.Signatures[0]
	}
	return out
}

func convertRPCInstruction(ix rpc.CompiledInstruction) solana.CompiledInstruction {
	return solana.CompiledInstruction{
		ProgramIDIndex: ix.ProgramIDIndex,
		Accounts:       ix.Accounts,
		Data:           ix.Data,
	}
}

// mentionsProgram reports whether programID is among the transaction's keys.
func mentionsProgram(tx *pumpfun.TransactionMeta, programID solana.PublicKey) bool {
	for _, k := range tx.AccountKeys {
		if k.Equals(programID) {
			return true
		}
	}
	return false
}

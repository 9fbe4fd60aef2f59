package chain

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ErrNoInstructions = errors.New("chain: no instructions to assemble")

// Assemble builds a legacy transaction paid by signer over the given
// instructions, signs it and returns the wire bytes. Instruction order is
// preserved; compute-budget and tip instructions must already be in place.
func Assemble(instructions []solana.Instruction, blockhash solana.Hash, signer solana.PrivateKey) (*solana.Transaction, []byte, error) {
	if len(instructions) == 0 {
		return nil, nil, ErrNoInstructions
	}

	payer := signer.PublicKey()
	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, nil, fmt.Errorf("build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &signer
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("sign transaction: %w", err)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("serialize transaction: %w", err)
	}
	return tx, raw, nil
}

package pumpfun

import (
	"bytes"
	"encoding/binary"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// BuyArgs are the buy instruction arguments.
type BuyArgs struct {
	Amount     uint64
	MaxSolCost uint64
}

// SellArgs are the sell instruction arguments.
type SellArgs struct {
	Amount       uint64
	MinSolOutput uint64
}

// Associated token account program instruction tags.
const (
	ataCreate           byte = 0
	ataCreateIdempotent byte = 1
)

func (a *BuyAccounts) CreateAssociatedAccount() solana.Instruction {
	return createAssociatedAccount(a.User, a.AssociatedUser, a.Mint, a.SystemProgram, a.TokenProgram, false)
}

// CreateAssociatedAccountIdempotent succeeds on chain when the account already exists.
func (a *BuyAccounts) CreateAssociatedAccountIdempotent() solana.Instruction {
	return createAssociatedAccount(a.User, a.AssociatedUser, a.Mint, a.SystemProgram, a.TokenProgram, true)
}

// Buy builds the buy instruction. Account order is positional on chain.
func (a *BuyAccounts) Buy(args BuyArgs) solana.Instruction {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Global, false, false),
		solana.NewAccountMeta(a.FeeRecipient, true, false),
		solana.NewAccountMeta(a.Mint, true, false),
		solana.NewAccountMeta(a.BondingCurve, true, false),
		solana.NewAccountMeta(a.AssociatedBondingCurve, true, false),
		solana.NewAccountMeta(a.AssociatedUser, true, false),
		solana.NewAccountMeta(a.User, true, true),
		solana.NewAccountMeta(a.SystemProgram, false, false),
		solana.NewAccountMeta(a.TokenProgram, false, false),
		solana.NewAccountMeta(a.CreatorVault, true, false),
		solana.NewAccountMeta(a.EventAuthority, false, false),
		solana.NewAccountMeta(a.Program, false, false),
	}
	return solana.NewInstruction(a.Program, accounts, encodeArgs(BuyDiscriminator, args.Amount, args.MaxSolCost))
}

// Sell builds the sell instruction.
func (a *SellAccounts) Sell(args SellArgs) solana.Instruction {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(a.Global, false, false),
		solana.NewAccountMeta(a.FeeRecipient, true, false),
		solana.NewAccountMeta(a.Mint, false, false),
		solana.NewAccountMeta(a.BondingCurve, true, false),
		solana.NewAccountMeta(a.AssociatedBondingCurve, true, false),
		solana.NewAccountMeta(a.AssociatedUser, true, false),
		solana.NewAccountMeta(a.User, true, true),
		solana.NewAccountMeta(a.SystemProgram, false, false),
		solana.NewAccountMeta(a.CreatorVault, true, false),
		solana.NewAccountMeta(a.TokenProgram, false, false),
		solana.NewAccountMeta(a.EventAuthority, false, false),
		solana.NewAccountMeta(a.Program, false, false),
	}
	return solana.NewInstruction(a.Program, accounts, encodeArgs(SellDiscriminator, args.Amount, args.MinSolOutput))
}

// CloseAssociatedAccount returns the rent of the emptied associated account
// to the user. The token library targets the legacy program, so the built
// instruction is re-addressed to the bundle's token program.
func (a *SellAccounts) CloseAssociatedAccount() (solana.Instruction, error) {
	ix, err := token.NewCloseAccountInstruction(a.AssociatedUser, a.User, a.User, nil).ValidateAndBuild()
	if err != nil {
		return nil, err
	}
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(a.TokenProgram, ix.Accounts(), data), nil
}

func encodeArgs(discriminator [8]byte, fields ...uint64) []byte {
	buf := new(bytes.Buffer)
	enc := ag_binary.NewBorshEncoder(buf)
	// Writes to a bytes.Buffer do not fail.
	_ = enc.WriteBytes(discriminator[:], false)
	for _, f := range fields {
		_ = enc.WriteUint64(f, binary.LittleEndian)
	}
	return buf.Bytes()
}

func createAssociatedAccount(payer, associated, mint, systemProgram, tokenProgram solana.PublicKey, idempotent bool) solana.Instruction {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(associated, true, false),
		solana.NewAccountMeta(payer, false, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(systemProgram, false, false),
		solana.NewAccountMeta(tokenProgram, false, false),
	}
	data := []byte{ataCreate}
	if idempotent {
		data = []byte{ataCreateIdempotent}
	}
	return solana.NewInstruction(ASSOCIATED_TOKEN_PROGRAM_ID, accounts, data)
}

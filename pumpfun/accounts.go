package pumpfun

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// BuyAccounts is the positional account layout of the buy instruction.
type BuyAccounts struct {
	Global                 solana.PublicKey
	FeeRecipient           solana.PublicKey
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	AssociatedUser         solana.PublicKey
	User                   solana.PublicKey
	SystemProgram          solana.PublicKey
	TokenProgram           solana.PublicKey
	CreatorVault           solana.PublicKey
	EventAuthority         solana.PublicKey
	Program                solana.PublicKey
}

// SellAccounts is the positional account layout of the sell instruction.
// Unlike buy, the creator vault precedes the token program.
type SellAccounts struct {
	Global                 solana.PublicKey
	FeeRecipient           solana.PublicKey
	Mint                   solana.PublicKey
	BondingCurve           solana.PublicKey
	AssociatedBondingCurve solana.PublicKey
	AssociatedUser         solana.PublicKey
	User                   solana.PublicKey
	SystemProgram          solana.PublicKey
	CreatorVault           solana.PublicKey
	TokenProgram           solana.PublicKey
	EventAuthority         solana.PublicKey
	Program                solana.PublicKey
}

const arrangedAccountCount = 12

// ArrangeBuyAccounts maps the decoded account list of a buy instruction onto
// BuyAccounts. Newer program versions append accounts; those are ignored.
func ArrangeBuyAccounts(metas []*solana.AccountMeta) (*BuyAccounts, bool) {
	if !hasAccounts(metas, arrangedAccountCount) {
		return nil, false
	}
	return &BuyAccounts{
		Global:                 metas[0].PublicKey,
		FeeRecipient:           metas[1].PublicKey,
		Mint:                   metas[2].PublicKey,
		BondingCurve:           metas[3].PublicKey,
		AssociatedBondingCurve: metas[4].PublicKey,
		AssociatedUser:         metas[5].PublicKey,
		User:                   metas[6].PublicKey,
		SystemProgram:          metas[7].PublicKey,
		TokenProgram:           metas[8].PublicKey,
		CreatorVault:           metas[9].PublicKey,
		EventAuthority:         metas[10].PublicKey,
		Program:                metas[11].PublicKey,
	}, true
}

// ArrangeSellAccounts maps the decoded account list of a sell instruction onto
// SellAccounts.
func ArrangeSellAccounts(metas []*solana.AccountMeta) (*SellAccounts, bool) {
	if !hasAccounts(metas, arrangedAccountCount) {
		return nil, false
	}
	return &SellAccounts{
		Global:                 metas[0].PublicKey,
		FeeRecipient:           metas[1].PublicKey,
		Mint:                   metas[2].PublicKey,
		BondingCurve:           metas[3].PublicKey,
		AssociatedBondingCurve: metas[4].PublicKey,
		AssociatedUser:         metas[5].PublicKey,
		User:                   metas[6].PublicKey,
		SystemProgram:          metas[7].PublicKey,
		CreatorVault:           metas[8].PublicKey,
		TokenProgram:           metas[9].PublicKey,
		EventAuthority:         metas[10].PublicKey,
		Program:                metas[11].PublicKey,
	}, true
}

func hasAccounts(metas []*solana.AccountMeta, n int) bool {
	if len(metas) < n {
		return false
	}
	for _, m := range metas[:n] {
		if m == nil {
			return false
		}
	}
	return true
}

// Retarget replaces the observed signer with wallet. The observed trader's
// accounts are never reused in the mirrored instruction.
func (a *BuyAccounts) Retarget(wallet solana.PublicKey) error {
	ata, err := DeriveAssociatedAccount(wallet, a.Mint, a.TokenProgram)
	if err != nil {
		return err
	}
	a.User = wallet
	a.AssociatedUser = ata
	return nil
}

// Retarget replaces the observed signer with wallet.
func (a *SellAccounts) Retarget(wallet solana.PublicKey) error {
	ata, err := DeriveAssociatedAccount(wallet, a.Mint, a.TokenProgram)
	if err != nil {
		return err
	}
	a.User = wallet
	a.AssociatedUser = ata
	return nil
}

// DeriveAssociatedAccount returns the associated token account of wallet for
// mint under tokenProgram (legacy Token or Token-2022).
func DeriveAssociatedAccount(wallet, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{wallet[:], tokenProgram[:], mint[:]},
		ASSOCIATED_TOKEN_PROGRAM_ID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated account for %s: %w", mint, err)
	}
	return addr, nil
}

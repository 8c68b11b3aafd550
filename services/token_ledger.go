package services

import (
	"errors"
	"fmt"

	"earn-quest-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TreasuryHolder owns all escrowed funds; deposits credit it, payouts and
// refunds debit it.
const TreasuryHolder = "platform:treasury"

// AssetTransfer is the narrow asset capability the escrow and payout services
// depend on. Methods take the caller's *gorm.DB so a transfer joins the
// surrounding transaction and rolls back with it.
type AssetTransfer interface {
	BalanceOf(db *gorm.DB, token, holder string) (int64, error)
	Transfer(db *gorm.DB, token, from, to string, amount int64) error
}

// TokenLedger implements AssetTransfer over the token_accounts table.
type TokenLedger struct{}

func NewTokenLedger() *TokenLedger {
	return &TokenLedger{}
}

// BalanceOf returns the holder's balance for token; missing accounts read as 0.
func (l *TokenLedger) BalanceOf(db *gorm.DB, token, holder string) (int64, error) {
	var account models.TokenAccount
	err := db.Where("token = ? AND holder = ?", token, holder).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance of %s: %w", holder, err)
	}
	return account.Balance, nil
}

// Transfer moves amount from one holder to another. Fails without touching
// either account when the source cannot cover the amount.
func (l *TokenLedger) Transfer(db *gorm.DB, token, from, to string, amount int64) error {
	if amount <= 0 {
		return ErrTransferFailed
	}

	var source models.TokenAccount
	err := lockForUpdate(db).Where("token = ? AND holder = ?", token, from).First(&source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && source.Balance < amount) {
		return ErrTransferFailed
	}
	if err != nil {
		return fmt.Errorf("failed to load source account %s: %w", from, err)
	}

	if err := db.Model(&models.TokenAccount{}).
		Where("token = ? AND holder = ?", token, from).
		Update("balance", gorm.Expr("balance - ?", amount)).Error; err != nil {
		return fmt.Errorf("failed to debit %s: %w", from, err)
	}

	credit := models.TokenAccount{Token: token, Holder: to, Balance: amount}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}, {Name: "holder"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("token_accounts.balance + ?", amount)}),
	}).Create(&credit).Error; err != nil {
		return fmt.Errorf("failed to credit %s: %w", to, err)
	}

	return nil
}

// Mint credits a holder out of thin air. Used to mirror external on-ramp
// deposits into the ledger (and to seed accounts in tests).
func (l *TokenLedger) Mint(db *gorm.DB, token, holder string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidRewardAmount
	}
	account := models.TokenAccount{Token: token, Holder: holder, Balance: amount}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}, {Name: "holder"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("token_accounts.balance + ?", amount)}),
	}).Create(&account).Error; err != nil {
		return fmt.Errorf("failed to mint to %s: %w", holder, err)
	}
	return nil
}

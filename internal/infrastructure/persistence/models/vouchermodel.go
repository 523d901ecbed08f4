package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherModel is the row layout of the vouchers table. Status is a cache
// of the derived status and is refreshed lazily by the retention sweeper.
type VoucherModel struct {
	ID                 string              `gorm:"primaryKey;size:64"`
	AmountSats         int64               `gorm:"not null"`
	WalletCurrency     string              `gorm:"size:3;not null;default:'BTC'"`
	USDAmountCents     *int64              `gorm:"column:usd_amount_cents"`
	WalletID           string              `gorm:"size:128;not null;index:idx_vouchers_wallet_id"`
	IssuerRefEncrypted string              `gorm:"type:text;not null"`
	Status             string              `gorm:"size:16;not null;index:idx_vouchers_status"`
	Claimed            bool                `gorm:"not null;default:false"`
	ClaimedAt          *time.Time          `gorm:"precision:6"`
	CancelledAt        *time.Time          `gorm:"precision:6"`
	CreatedAt          time.Time           `gorm:"precision:6;not null;index:idx_vouchers_created_at"`
	ExpiresAt          time.Time           `gorm:"precision:6;not null;index:idx_vouchers_expires_at"`
	ExpiryID           string              `gorm:"size:16;not null"`
	CommissionPercent  decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0"`
	DisplayAmount      decimal.NullDecimal `gorm:"type:decimal(20,8)"`
	DisplayCurrency    string              `gorm:"size:3;not null;default:''"`
	Environment        string              `gorm:"size:32;not null;default:''"`
}

func (VoucherModel) TableName() string {
	return "vouchers"
}

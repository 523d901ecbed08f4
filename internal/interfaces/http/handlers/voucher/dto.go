package voucher

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lnpos/voucherd/internal/application/voucher/usecases"
	domain "github.com/lnpos/voucherd/internal/domain/voucher"
	vo "github.com/lnpos/voucherd/internal/domain/voucher/valueobjects"
)

// CreateVoucherRequest represents the request body for issuing a voucher.
// Amounts are validated again by the domain; these tags only reject
// obviously malformed input.
type CreateVoucherRequest struct {
	AmountSats        int64            `json:"amount_sats" validate:"required,gt=0"`
	WalletCurrency    string           `json:"wallet_currency" validate:"omitempty,oneof=BTC USD btc usd"`
	USDAmountCents    *int64           `json:"usd_amount_cents,omitempty" validate:"omitempty,gt=0"`
	WalletID          string           `json:"wallet_id" validate:"required,max=128"`
	IssuerRef         string           `json:"issuer_ref" validate:"required,max=4096"`
	ExpiryID          string           `json:"expiry_id,omitempty" validate:"omitempty,max=16"`
	CommissionPercent *decimal.Decimal `json:"commission_percent,omitempty"`
	DisplayAmount     *decimal.Decimal `json:"display_amount,omitempty"`
	DisplayCurrency   string           `json:"display_currency,omitempty" validate:"omitempty,len=3"`
	Environment       string           `json:"environment,omitempty" validate:"omitempty,max=32"`
}

func (r *CreateVoucherRequest) toCommand() usecases.CreateVoucherCommand {
	cmd := usecases.CreateVoucherCommand{
		AmountSats:      r.AmountSats,
		WalletCurrency:  r.WalletCurrency,
		USDAmountCents:  r.USDAmountCents,
		WalletID:        r.WalletID,
		IssuerRef:       r.IssuerRef,
		ExpiryID:        r.ExpiryID,
		DisplayAmount:   r.DisplayAmount,
		DisplayCurrency: r.DisplayCurrency,
		Environment:     r.Environment,
	}
	if r.CommissionPercent != nil {
		cmd.CommissionPercent = *r.CommissionPercent
	}
	return cmd
}

// VoucherResponse is the public view of a voucher. The issuer reference is
// never serialised.
type VoucherResponse struct {
	ID                string           `json:"id"`
	AmountSats        int64            `json:"amount_sats"`
	WalletCurrency    string           `json:"wallet_currency"`
	USDAmountCents    *int64           `json:"usd_amount_cents,omitempty"`
	WalletID          string           `json:"wallet_id"`
	Status            string           `json:"status"`
	Claimed           bool             `json:"claimed"`
	ClaimedAt         *time.Time       `json:"claimed_at,omitempty"`
	CancelledAt       *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	ExpiresAt         time.Time        `json:"expires_at"`
	ExpiryID          string           `json:"expiry_id"`
	CommissionPercent decimal.Decimal  `json:"commission_percent"`
	DisplayAmount     *decimal.Decimal `json:"display_amount,omitempty"`
	DisplayCurrency   string           `json:"display_currency,omitempty"`
	Environment       string           `json:"environment,omitempty"`
}

func toVoucherResponse(v *domain.Voucher) *VoucherResponse {
	if v == nil {
		return nil
	}
	return &VoucherResponse{
		ID:                v.ID(),
		AmountSats:        v.AmountSats(),
		WalletCurrency:    v.WalletCurrency().String(),
		USDAmountCents:    v.USDAmountCents(),
		WalletID:          v.WalletID(),
		Status:            v.Status().String(),
		Claimed:           v.Claimed(),
		ClaimedAt:         v.ClaimedAt(),
		CancelledAt:       v.CancelledAt(),
		CreatedAt:         v.CreatedAt(),
		ExpiresAt:         v.ExpiresAt(),
		ExpiryID:          v.ExpiryID(),
		CommissionPercent: v.CommissionPercent(),
		DisplayAmount:     v.DisplayAmount(),
		DisplayCurrency:   v.DisplayCurrency(),
		Environment:       v.Environment(),
	}
}

func toVoucherResponses(vouchers []*domain.Voucher) []*VoucherResponse {
	out := make([]*VoucherResponse, 0, len(vouchers))
	for _, v := range vouchers {
		out = append(out, toVoucherResponse(v))
	}
	return out
}

// TransitionResponse reports the outcome of claim, unclaim or cancel.
type TransitionResponse struct {
	ID      string `json:"id"`
	Applied bool   `json:"applied"`
}

type IssuerRefResponse struct {
	ID        string `json:"id"`
	IssuerRef string `json:"issuer_ref"`
}

type UnclaimedCountResponse struct {
	WalletID string `json:"wallet_id"`
	Count    int    `json:"count"`
}

type ExpiryPresetResponse struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Seconds int64  `json:"seconds"`
	Default bool   `json:"default"`
}

func toExpiryPresetResponses(presets []vo.ExpiryPreset, defaultID string) []ExpiryPresetResponse {
	out := make([]ExpiryPresetResponse, 0, len(presets))
	for _, p := range presets {
		out = append(out, ExpiryPresetResponse{
			ID:      p.ID,
			Label:   p.Label,
			Seconds: p.Seconds,
			Default: p.ID == defaultID,
		})
	}
	return out
}

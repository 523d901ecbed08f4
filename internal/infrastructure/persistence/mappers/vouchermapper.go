package mappers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lnpos/voucherd/internal/domain/voucher"
	vo "github.com/lnpos/voucherd/internal/domain/voucher/valueobjects"
	"github.com/lnpos/voucherd/internal/infrastructure/persistence/models"
	"github.com/lnpos/voucherd/internal/shared/biztime"
)

// DBTime normalises a timestamp to the precision every supported dialect
// can store, so a value read back compares equal to the one written.
func DBTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func dbTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := DBTime(*t)
	return &v
}

func VoucherToModel(v *voucher.Voucher) *models.VoucherModel {
	model := &models.VoucherModel{
		ID:                 v.ID(),
		AmountSats:         v.AmountSats(),
		WalletCurrency:     v.WalletCurrency().String(),
		USDAmountCents:     v.USDAmountCents(),
		WalletID:           v.WalletID(),
		IssuerRefEncrypted: v.IssuerRefCiphertext(),
		Status:             v.Status().String(),
		Claimed:            v.Claimed(),
		ClaimedAt:          dbTimePtr(v.ClaimedAt()),
		CancelledAt:        dbTimePtr(v.CancelledAt()),
		CreatedAt:          DBTime(v.CreatedAt()),
		ExpiresAt:          DBTime(v.ExpiresAt()),
		ExpiryID:           v.ExpiryID(),
		CommissionPercent:  v.CommissionPercent(),
		DisplayCurrency:    v.DisplayCurrency(),
		Environment:        v.Environment(),
	}

	if amount := v.DisplayAmount(); amount != nil {
		model.DisplayAmount = decimal.NewNullDecimal(*amount)
	}

	return model
}

func VoucherToDomain(model *models.VoucherModel) (*voucher.Voucher, error) {
	currency := vo.WalletCurrency(model.WalletCurrency)
	denomination, err := vo.NewDenomination(currency, model.AmountSats, model.USDAmountCents)
	if err != nil {
		return nil, fmt.Errorf("invalid denomination for voucher %s: %w", model.ID, err)
	}

	status := vo.Status(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid voucher status: %s", model.Status)
	}

	var displayAmount *decimal.Decimal
	if model.DisplayAmount.Valid {
		amount := model.DisplayAmount.Decimal
		displayAmount = &amount
	}

	return voucher.ReconstructVoucher(voucher.ReconstructParams{
		ID:                  model.ID,
		Denomination:        denomination,
		IssuerRefCiphertext: model.IssuerRefEncrypted,
		WalletID:            model.WalletID,
		CreatedAt:           model.CreatedAt.UTC(),
		ExpiresAt:           model.ExpiresAt.UTC(),
		ExpiryID:            model.ExpiryID,
		Claimed:             model.Claimed,
		ClaimedAt:           biztime.ToUTC(model.ClaimedAt),
		CancelledAt:         biztime.ToUTC(model.CancelledAt),
		CommissionPercent:   model.CommissionPercent,
		DisplayAmount:       displayAmount,
		DisplayCurrency:     model.DisplayCurrency,
		Environment:         model.Environment,
		Status:              status,
	}), nil
}

func VouchersToDomain(rows []models.VoucherModel) ([]*voucher.Voucher, error) {
	out := make([]*voucher.Voucher, 0, len(rows))
	for i := range rows {
		v, err := VoucherToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

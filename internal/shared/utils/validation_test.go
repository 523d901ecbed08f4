package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lnpos/voucherd/internal/shared/errors"
)

type sampleRequest struct {
	WalletID  string `json:"wallet_id" validate:"required,max=128"`
	Amount    int64  `json:"amount_sats" validate:"gt=0"`
	Currency  string `json:"wallet_currency" validate:"oneof=BTC USD"`
	VoucherID string `json:"voucher_id" validate:"omitempty,voucherid"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantErr string
	}{
		{"valid", sampleRequest{WalletID: "w1", Amount: 10, Currency: "BTC"}, ""},
		{"missing wallet", sampleRequest{Amount: 10, Currency: "BTC"}, "wallet_id is required"},
		{"zero amount", sampleRequest{WalletID: "w1", Currency: "USD"}, "amount_sats must be greater than 0"},
		{"bad currency", sampleRequest{WalletID: "w1", Amount: 1, Currency: "EUR"}, "wallet_currency must be one of: BTC USD"},
		{"bad id", sampleRequest{WalletID: "w1", Amount: 1, Currency: "BTC", VoucherID: "../x"}, "voucher_id must be an alphanumeric voucher id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsValidationError(err))
			assert.Contains(t, apperrors.GetAppError(err).Details, tt.wantErr)
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, ValidateVar("id", "Ab12", "voucherid"))

	err := ValidateVar("id", "with space", "voucherid")
	require.Error(t, err)
	assert.Contains(t, apperrors.GetAppError(err).Details, "id: ")
}

package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDenomination(t *testing.T) {
	cents := func(v int64) *int64 { return &v }

	tests := []struct {
		name      string
		currency  WalletCurrency
		sats      int64
		cents     *int64
		wantErr   bool
		wantCents *int64
	}{
		{"btc", WalletCurrencyBTC, 1000, nil, false, nil},
		{"btc ignores cents", WalletCurrencyBTC, 1000, cents(250), false, nil},
		{"btc zero sats", WalletCurrencyBTC, 0, nil, true, nil},
		{"usd", WalletCurrencyUSD, 1000, cents(250), false, cents(250)},
		{"usd without cents", WalletCurrencyUSD, 1000, nil, true, nil},
		{"usd zero cents", WalletCurrencyUSD, 1000, cents(0), true, nil},
		{"usd negative sats", WalletCurrencyUSD, -5, cents(1), true, nil},
		{"unknown currency", WalletCurrency("EUR"), 1000, nil, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDenomination(tt.currency, tt.sats, tt.cents)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.currency, d.Currency())
			assert.Equal(t, tt.sats, d.AmountSats())
			assert.Equal(t, tt.wantCents, d.USDAmountCents())
		})
	}
}

func TestParseWalletCurrency(t *testing.T) {
	c, err := ParseWalletCurrency("")
	require.NoError(t, err)
	assert.Equal(t, WalletCurrencyBTC, c)

	c, err = ParseWalletCurrency("usd")
	require.NoError(t, err)
	assert.Equal(t, WalletCurrencyUSD, c)

	_, err = ParseWalletCurrency("EUR")
	assert.Error(t, err)
}

func TestDenomination_String(t *testing.T) {
	d, err := NewUSDDenomination(2100, 105)
	require.NoError(t, err)
	assert.Equal(t, "2100 sats (USD 1.05)", d.String())
}

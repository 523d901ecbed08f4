package valueobjects

import (
	"fmt"
	"strings"
)

// WalletCurrency is the currency of the wallet a voucher was issued from.
type WalletCurrency string

const (
	WalletCurrencyBTC WalletCurrency = "BTC"
	WalletCurrencyUSD WalletCurrency = "USD"
)

// ParseWalletCurrency accepts BTC or USD case-insensitively. Empty means BTC.
func ParseWalletCurrency(s string) (WalletCurrency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "BTC":
		return WalletCurrencyBTC, nil
	case "USD":
		return WalletCurrencyUSD, nil
	default:
		return "", fmt.Errorf("unsupported wallet currency %q", s)
	}
}

func (c WalletCurrency) IsValid() bool {
	return c == WalletCurrencyBTC || c == WalletCurrencyUSD
}

func (c WalletCurrency) String() string {
	return string(c)
}

// Denomination is the value carried by a voucher. The sats amount is always
// present; a USD denomination additionally carries the cents the issuer paid.
// The zero value is invalid; use NewBTCDenomination or NewUSDDenomination.
type Denomination struct {
	currency       WalletCurrency
	amountSats     int64
	usdAmountCents int64
}

func NewBTCDenomination(amountSats int64) (Denomination, error) {
	if amountSats <= 0 {
		return Denomination{}, fmt.Errorf("amount must be positive, got %d sats", amountSats)
	}
	return Denomination{currency: WalletCurrencyBTC, amountSats: amountSats}, nil
}

func NewUSDDenomination(amountSats, usdAmountCents int64) (Denomination, error) {
	if amountSats <= 0 {
		return Denomination{}, fmt.Errorf("amount must be positive, got %d sats", amountSats)
	}
	if usdAmountCents <= 0 {
		return Denomination{}, fmt.Errorf("USD vouchers require a positive cents amount, got %d", usdAmountCents)
	}
	return Denomination{currency: WalletCurrencyUSD, amountSats: amountSats, usdAmountCents: usdAmountCents}, nil
}

// NewDenomination dispatches on currency. cents is ignored for BTC.
func NewDenomination(currency WalletCurrency, amountSats int64, usdAmountCents *int64) (Denomination, error) {
	switch currency {
	case WalletCurrencyBTC:
		return NewBTCDenomination(amountSats)
	case WalletCurrencyUSD:
		if usdAmountCents == nil {
			return Denomination{}, fmt.Errorf("USD vouchers require usdAmountCents")
		}
		return NewUSDDenomination(amountSats, *usdAmountCents)
	default:
		return Denomination{}, fmt.Errorf("unsupported wallet currency %q", currency)
	}
}

func (d Denomination) Currency() WalletCurrency {
	return d.currency
}

func (d Denomination) AmountSats() int64 {
	return d.amountSats
}

// USDAmountCents returns the cents amount, or nil for BTC denominations.
func (d Denomination) USDAmountCents() *int64 {
	if d.currency != WalletCurrencyUSD {
		return nil
	}
	cents := d.usdAmountCents
	return &cents
}

func (d Denomination) IsUSD() bool {
	return d.currency == WalletCurrencyUSD
}

func (d Denomination) String() string {
	if d.IsUSD() {
		return fmt.Sprintf("%d sats (USD %d.%02d)", d.amountSats, d.usdAmountCents/100, d.usdAmountCents%100)
	}
	return fmt.Sprintf("%d sats", d.amountSats)
}

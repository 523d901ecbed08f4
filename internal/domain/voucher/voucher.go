package voucher

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	vo "github.com/lnpos/voucherd/internal/domain/voucher/valueobjects"
	"github.com/lnpos/voucherd/internal/shared/id"
)

const (
	maxWalletIDLength  = 128
	maxIssuerRefLength = 4096
	maxEnvLength       = 32
)

var maxCommission = decimal.NewFromInt(100)

// Voucher is a single-use prepaid claim code bound to an issuing wallet.
type Voucher struct {
	id           string
	denomination vo.Denomination

	// issuerRef is populated only on the record returned from creation.
	// The durable copy lives in issuerRefCiphertext.
	issuerRef           string
	issuerRefCiphertext string

	walletID  string
	createdAt time.Time
	expiresAt time.Time
	expiryID  string

	claimed     bool
	claimedAt   *time.Time
	cancelledAt *time.Time

	commissionPercent decimal.Decimal
	displayAmount     *decimal.Decimal
	displayCurrency   string
	environment       string

	status vo.Status
}

// NewVoucherParams carries the issuer's request. Denomination has already
// been validated by its constructor.
type NewVoucherParams struct {
	Denomination      vo.Denomination
	WalletID          string
	IssuerRef         string
	Expiry            vo.ExpiryPreset
	CommissionPercent decimal.Decimal
	DisplayAmount     *decimal.Decimal
	DisplayCurrency   string
	Environment       string
}

// NewVoucher validates the request and mints a fresh ACTIVE voucher with a
// random id. expiresAt is fixed here and never changes.
func NewVoucher(p NewVoucherParams, now time.Time) (*Voucher, error) {
	if p.Denomination.AmountSats() <= 0 {
		return nil, errInvalid("amount must be positive")
	}
	walletID := strings.TrimSpace(p.WalletID)
	if walletID == "" {
		return nil, errInvalid("wallet id is required")
	}
	if len(walletID) > maxWalletIDLength {
		return nil, errInvalid("wallet id exceeds %d characters", maxWalletIDLength)
	}
	if strings.TrimSpace(p.IssuerRef) == "" {
		return nil, errInvalid("issuer reference is required")
	}
	if len(p.IssuerRef) > maxIssuerRefLength {
		return nil, errInvalid("issuer reference exceeds %d bytes", maxIssuerRefLength)
	}
	if p.CommissionPercent.IsNegative() || p.CommissionPercent.GreaterThan(maxCommission) {
		return nil, errInvalid("commission percent must be between 0 and 100")
	}
	if p.DisplayAmount != nil && p.DisplayAmount.IsNegative() {
		return nil, errInvalid("display amount must not be negative")
	}
	displayCurrency, err := normalizeDisplayCurrency(p.DisplayCurrency)
	if err != nil {
		return nil, err
	}
	if len(p.Environment) > maxEnvLength {
		return nil, errInvalid("environment exceeds %d characters", maxEnvLength)
	}
	if p.Expiry.Duration <= 0 {
		return nil, errInvalid("expiry preset is required")
	}

	voucherID, err := id.NewVoucherID()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Voucher{
		id:                voucherID,
		denomination:      p.Denomination,
		issuerRef:         p.IssuerRef,
		walletID:          walletID,
		createdAt:         now,
		expiresAt:         now.Add(p.Expiry.Duration),
		expiryID:          p.Expiry.ID,
		commissionPercent: p.CommissionPercent,
		displayAmount:     p.DisplayAmount,
		displayCurrency:   displayCurrency,
		environment:       p.Environment,
		status:            vo.StatusActive,
	}, nil
}

func normalizeDisplayCurrency(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", nil
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", errInvalid("display currency %q is not an ISO 4217 code", code)
	}
	return unit.String(), nil
}

// ReconstructParams mirrors the persisted row.
type ReconstructParams struct {
	ID                  string
	Denomination        vo.Denomination
	IssuerRefCiphertext string
	WalletID            string
	CreatedAt           time.Time
	ExpiresAt           time.Time
	ExpiryID            string
	Claimed             bool
	ClaimedAt           *time.Time
	CancelledAt         *time.Time
	CommissionPercent   decimal.Decimal
	DisplayAmount       *decimal.Decimal
	DisplayCurrency     string
	Environment         string
	Status              vo.Status
}

// ReconstructVoucher rebuilds a voucher from storage without validation.
func ReconstructVoucher(p ReconstructParams) *Voucher {
	return &Voucher{
		id:                  p.ID,
		denomination:        p.Denomination,
		issuerRefCiphertext: p.IssuerRefCiphertext,
		walletID:            p.WalletID,
		createdAt:           p.CreatedAt,
		expiresAt:           p.ExpiresAt,
		expiryID:            p.ExpiryID,
		claimed:             p.Claimed,
		claimedAt:           p.ClaimedAt,
		cancelledAt:         p.CancelledAt,
		commissionPercent:   p.CommissionPercent,
		displayAmount:       p.DisplayAmount,
		displayCurrency:     p.DisplayCurrency,
		environment:         p.Environment,
		status:              p.Status,
	}
}

// SealIssuerRef records the encrypted form of the issuer reference.
func (v *Voucher) SealIssuerRef(ciphertext string) {
	v.issuerRefCiphertext = ciphertext
}

// RefreshStatus replaces the cached status with the one derived at now.
func (v *Voucher) RefreshStatus(now time.Time) vo.Status {
	v.status = v.DeriveStatus(now)
	return v.status
}

// DeriveStatus computes the status at now without mutating the voucher.
func (v *Voucher) DeriveStatus(now time.Time) vo.Status {
	return vo.DeriveStatus(v.claimed, v.cancelledAt, v.expiresAt, now)
}

// IsRedeemable reports whether a claim at now could succeed.
func (v *Voucher) IsRedeemable(now time.Time) bool {
	return v.DeriveStatus(now).IsRedeemable()
}

func (v *Voucher) ID() string {
	return v.id
}

func (v *Voucher) Denomination() vo.Denomination {
	return v.denomination
}

func (v *Voucher) AmountSats() int64 {
	return v.denomination.AmountSats()
}

func (v *Voucher) WalletCurrency() vo.WalletCurrency {
	return v.denomination.Currency()
}

func (v *Voucher) USDAmountCents() *int64 {
	return v.denomination.USDAmountCents()
}

// IssuerRef is empty unless this record came straight from creation.
func (v *Voucher) IssuerRef() string {
	return v.issuerRef
}

func (v *Voucher) IssuerRefCiphertext() string {
	return v.issuerRefCiphertext
}

func (v *Voucher) WalletID() string {
	return v.walletID
}

func (v *Voucher) CreatedAt() time.Time {
	return v.createdAt
}

func (v *Voucher) ExpiresAt() time.Time {
	return v.expiresAt
}

func (v *Voucher) ExpiryID() string {
	return v.expiryID
}

func (v *Voucher) Claimed() bool {
	return v.claimed
}

func (v *Voucher) ClaimedAt() *time.Time {
	return v.claimedAt
}

func (v *Voucher) CancelledAt() *time.Time {
	return v.cancelledAt
}

func (v *Voucher) CommissionPercent() decimal.Decimal {
	return v.commissionPercent
}

func (v *Voucher) DisplayAmount() *decimal.Decimal {
	return v.displayAmount
}

func (v *Voucher) DisplayCurrency() string {
	return v.displayCurrency
}

func (v *Voucher) Environment() string {
	return v.environment
}

// Status returns the cached status as last stored or refreshed.
func (v *Voucher) Status() vo.Status {
	return v.status
}

package valueobjects

import "time"

// ExpiryPreset is a named validity window offered at voucher creation.
type ExpiryPreset struct {
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	Duration time.Duration `json:"-"`
	Seconds  int64         `json:"seconds"`
	// Legacy presets still resolve for old clients but are hidden from pickers.
	Legacy bool `json:"legacy,omitempty"`
}

const (
	day = 24 * time.Hour

	// DefaultExpiryID is used when a caller supplies no or an unknown preset.
	DefaultExpiryID = "24h"
)

var expiryPresets = []ExpiryPreset{
	preset("15m", "15 minutes", 15*time.Minute, true),
	preset("1h", "1 hour", time.Hour, true),
	preset("24h", "24 hours", day, false),
	preset("72h", "72 hours", 3*day, false),
	preset("7d", "7 days", 7*day, false),
	preset("15d", "15 days", 15*day, false),
	preset("30d", "30 days", 30*day, false),
	preset("60d", "60 days", 60*day, false),
	preset("90d", "90 days", 90*day, false),
	preset("6mo", "6 months", 180*day, false),
}

func preset(id, label string, d time.Duration, legacy bool) ExpiryPreset {
	return ExpiryPreset{ID: id, Label: label, Duration: d, Seconds: int64(d / time.Second), Legacy: legacy}
}

// ExpiryPresets returns every known preset in display order.
func ExpiryPresets() []ExpiryPreset {
	out := make([]ExpiryPreset, len(expiryPresets))
	copy(out, expiryPresets)
	return out
}

// VisiblePresets returns the presets offered to new vouchers.
func VisiblePresets() []ExpiryPreset {
	out := make([]ExpiryPreset, 0, len(expiryPresets))
	for _, p := range expiryPresets {
		if !p.Legacy {
			out = append(out, p)
		}
	}
	return out
}

// LookupExpiry finds a preset by id.
func LookupExpiry(id string) (ExpiryPreset, bool) {
	for _, p := range expiryPresets {
		if p.ID == id {
			return p, true
		}
	}
	return ExpiryPreset{}, false
}

// ResolveExpiry never fails: an empty or unknown id falls back to the
// default preset. The returned preset's ID is the one to persist.
func ResolveExpiry(id string) ExpiryPreset {
	return ResolveExpiryWithDefault(id, DefaultExpiryID)
}

// ResolveExpiryWithDefault is ResolveExpiry with a configurable fallback.
// An unknown fallback degrades to DefaultExpiryID.
func ResolveExpiryWithDefault(id, fallback string) ExpiryPreset {
	if p, ok := LookupExpiry(id); ok {
		return p
	}
	if p, ok := LookupExpiry(fallback); ok {
		return p
	}
	p, _ := LookupExpiry(DefaultExpiryID)
	return p
}

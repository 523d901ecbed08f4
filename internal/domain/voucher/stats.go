package voucher

// Stats is a point-in-time count of vouchers by derived status.
type Stats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Claimed   int64 `json:"claimed"`
	Cancelled int64 `json:"cancelled"`
	Expired   int64 `json:"expired"`
}

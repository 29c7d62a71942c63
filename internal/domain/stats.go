package domain

// DashboardStats is the read-only aggregate shown on the admin dashboard.
// Change fields are percentage deltas against the previous period; a previous
// period with zero entries yields exactly 0.0 rather than a division error.
type DashboardStats struct {
	TotalUsers            int     `json:"total_users"`
	TotalAds              int     `json:"total_ads"`
	PendingPayments       int     `json:"pending_payments"`
	ApprovedAds           int     `json:"approved_ads"`
	UsersMonthChange      float64 `json:"users_month_change"`
	AdsMonthChange        float64 `json:"ads_month_change"`
	PaymentsWeekChange    float64 `json:"payments_week_change"`
	ApprovedAdsWeekChange float64 `json:"approved_ads_week_change"`
}

// PercentChange computes (current - previous) / previous * 100, defined as 0.0
// when previous is zero.
func PercentChange(current, previous int) float64 {
	if previous == 0 {
		return 0.0
	}
	return float64(current-previous) / float64(previous) * 100
}

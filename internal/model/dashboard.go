package model

// DashboardStats is the read-only summary served to the dashboard. It may be
// a few minutes stale.
type DashboardStats struct {
	TotalCustomers  int `json:"total_customers"`
	TotalCampaigns  int `json:"total_campaigns"`
	VoicemailsSent  int `json:"voicemails_sent"`
	SuccessRate     int `json:"success_rate"`
	ActiveCampaigns int `json:"active_campaigns"`
}

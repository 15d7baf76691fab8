package dto

// SeedChartRequest selects a chart-of-accounts template to seed a tenant's
// chart from.
type SeedChartRequest struct {
	Template string `json:"template" binding:"required"`
}

// ChartTemplateSummary describes one available chart template.
type ChartTemplateSummary struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Currency    string `json:"currency"`
	Accounts    int    `json:"accounts"`
}

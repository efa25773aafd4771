package dto

import "github.com/shopspring/decimal"

// RevenueSeries is a month-bucketed revenue/order-count series, oldest to
// newest, with the current month as the last entry.
type RevenueSeries struct {
	Labels  []string          `json:"labels"`
	Revenue []decimal.Decimal `json:"revenue"`
	Orders  []int             `json:"orders"`
}

// DashboardStats aggregates the figures shown on the admin dashboard.
type DashboardStats struct {
	TotalCustomers int             `json:"totalCustomers"`
	TotalOrders    int             `json:"totalOrders"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	PendingOrders  int             `json:"pendingOrders"`
	RevenueData    RevenueSeries   `json:"revenueData"`
}

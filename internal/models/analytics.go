package models

import "time"

// MasterRow is the subset of master_dataset.csv the reporter aggregates over.
type MasterRow struct {
	OrderID    string
	CustomerID string
	FullName   string
	Category   string
	OrderDate  time.Time
	TotalValue float64
}

type CustomerRevenue struct {
	CustomerID string  `json:"customer_id"`
	FullName   string  `json:"full_name"`
	TotalValue float64 `json:"total_value"`
	Orders     int     `json:"orders"`
}

type CategorySales struct {
	Category   string  `json:"category"`
	TotalValue float64 `json:"total_value"`
}

type MonthlyData struct {
	Month  string  `json:"month"`
	Volume float64 `json:"volume"`
}

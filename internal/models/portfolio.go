// internal/models/portfolio.go
package models

import "time"

type AssetType string

const (
	AssetStock AssetType = "stock"
	AssetFund  AssetType = "fund"
	AssetOther AssetType = "other"
)

func (a AssetType) Valid() bool {
	return a == AssetStock || a == AssetFund || a == AssetOther
}

type Holding struct {
	Symbol        string    `json:"symbol"`
	Quantity      float64   `json:"quantity"`
	PurchasePrice float64   `json:"purchasePrice"`
	CurrentPrice  float64   `json:"currentPrice"`
	AssetType     AssetType `json:"assetType"`
}

type Goal struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name,omitempty"`
	TargetAmount        float64   `json:"targetAmount"`
	CurrentAmount       float64   `json:"currentAmount"`
	MonthlyContribution float64   `json:"monthlyContribution"`
	CreatedAt           time.Time `json:"createdAt"`
	TargetDate          time.Time `json:"targetDate"`
	IsAchieved          bool      `json:"isAchieved"`
}

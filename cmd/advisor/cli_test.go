package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--json=false"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSIPCommand(t *testing.T) {
	out, err := execute(t, "sip", "--target", "1000000", "--months", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "Monthly SIP:   4347.09 for 120 months at 12% a year")
}

func TestSIPCommand_RejectsZeroMonths(t *testing.T) {
	_, err := execute(t, "sip", "--target", "1000000", "--months", "0")
	assert.Error(t, err)
}

func TestPortfolioCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holdings.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"symbol": "RELIANCE", "quantity": 50, "purchasePrice": 2400, "currentPrice": 2650, "assetType": "stock"}
	]`), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"portfolio", path, "--json"})
	require.NoError(t, rootCmd.Execute())

	var summary struct {
		TotalInvested float64 `json:"totalInvested"`
		TotalCurrent  float64 `json:"totalCurrent"`
		TotalGainLoss float64 `json:"totalGainLoss"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, 120000.0, summary.TotalInvested)
	assert.Equal(t, 132500.0, summary.TotalCurrent)
	assert.Equal(t, 12500.0, summary.TotalGainLoss)
}

func TestGoalCommand(t *testing.T) {
	out, err := execute(t, "goal",
		"--target", "1000000", "--current", "150000", "--monthly", "0",
		"--created", "2021-01-01", "--by", "2099-01-01", "--achieved=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:            ON_TRACK")
}

func TestGoalCommand_BadDate(t *testing.T) {
	_, err := execute(t, "goal", "--target", "1000", "--by", "01/01/2030", "--created", "")
	assert.Error(t, err)
}

func TestPortfolioCommand_WithProfile(t *testing.T) {
	dir := t.TempDir()
	holdings := filepath.Join(dir, "holdings.json")
	require.NoError(t, os.WriteFile(holdings, []byte(`[
		{"symbol": "RELIANCE", "quantity": 10, "purchasePrice": 5000, "currentPrice": 6000, "assetType": "stock"},
		{"symbol": "GOLD", "quantity": 10, "purchasePrice": 1900, "currentPrice": 2000, "assetType": "other"}
	]`), 0o600))
	profile := filepath.Join(dir, "profile.json")
	require.NoError(t, os.WriteFile(profile, []byte(`{"age": 35, "riskTolerance": "moderate", "investmentHorizon": 10,
		"hasEmergencyFund": true, "annualIncome": 1000000}`), 0o600))
	t.Cleanup(func() { portfolioProfile = "" })

	out, err := execute(t, "portfolio", holdings, "--profile", profile)
	require.NoError(t, err)
	assert.Contains(t, out, "Risk profile:    Moderate (score 6)")
	assert.Contains(t, out, "increase Bonds")
}

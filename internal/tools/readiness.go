package tools

import (
	"context"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Readiness thresholds on the funding ratio.
const (
	onTrackRatio         = 1.1
	needsAdjustmentRatio = 0.75
	defaultTargetYears   = 25
)

type readinessTool struct{}

func newReadinessTool(_ Deps) Tool {
	return &readinessTool{}
}

func (t *readinessTool) Name() string {
	return "retirement_readiness"
}

func (t *readinessTool) Description() string {
	return "Rough check of whether current savings cover the target retirement horizon at the stated spend."
}

func (t *readinessTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"age": map[string]any{
				"type":        "number",
				"description": "The user's current age.",
			},
			"savings": map[string]any{
				"type":        "number",
				"description": "Total retirement savings in dollars.",
			},
			"monthly_spend": map[string]any{
				"type":        "number",
				"description": "Expected monthly spend in retirement, in dollars.",
			},
			"target_years": map[string]any{
				"type":        "number",
				"description": "Horizon to fund, in years. Defaults to 25.",
			},
		},
		"required": []string{"age", "savings", "monthly_spend"},
	}
}

func (t *readinessTool) Call(_ context.Context, input map[string]any) (string, error) {
	if _, ok := floatArg(input, "age"); !ok {
		return "", fmt.Errorf("age, savings, and monthly_spend are required")
	}
	savings, okSavings := floatArg(input, "savings")
	monthlySpend, okMonthly := floatArg(input, "monthly_spend")
	if !okSavings || !okMonthly {
		return "", fmt.Errorf("age, savings, and monthly_spend are required")
	}
	targetYears := float64(defaultTargetYears)
	if v, ok := floatArg(input, "target_years"); ok {
		targetYears = v
	}

	annualSpend := monthlySpend * 12
	required := annualSpend * targetYears
	ratio := 0.0
	if required > 0 {
		ratio = savings / required
	}

	var status, recommendation string
	switch {
	case ratio >= onTrackRatio:
		status = "on_track"
		recommendation = "You appear to have enough savings to cover the target horizon. Stress-test the plan with market variability and healthcare costs."
	case ratio >= needsAdjustmentRatio:
		status = "needs_adjustment"
		recommendation = "You're within striking distance. Consider increasing savings, delaying retirement a few years, or trimming monthly spend."
	default:
		status = "shortfall"
		recommendation = "Current savings are well below the target. Revisit contributions, lifestyle assumptions, or explore part-time retirement income."
	}

	return fmt.Sprintf("Status: %s. Funding ratio %.0f%%. Estimated requirement $%s. %s",
		status, ratio*100, humanize.Commaf(math.Round(required)), recommendation), nil
}

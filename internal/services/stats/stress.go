package stats

import "github.com/bobmcallan/sectorlens/internal/models"

// Scenario is a named uniform shock applied to every periodic return.
type Scenario struct {
	Name  string
	Shock float64
}

// DefaultScenarios are the stress scenarios run on every analysis.
var DefaultScenarios = []Scenario{
	{Name: "Market Crash -10%", Shock: -0.10},
	{Name: "Interest Rate Hike +2%", Shock: -0.02},
}

// RunStressTests applies each scenario's shock to the portfolio's periodic
// returns and reports the impact on the mean return.
func RunStressTests(returns []float64, scenarios []Scenario) []models.StressResult {
	base := Mean(returns)

	results := make([]models.StressResult, len(scenarios))
	for i, s := range scenarios {
		shocked := base + s.Shock
		results[i] = models.StressResult{
			Scenario:          s.Name,
			BaseMeanReturn:    base,
			ShockedMeanReturn: shocked,
			Impact:            shocked - base,
		}
	}
	return results
}

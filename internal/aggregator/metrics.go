package aggregator

import "WealthSentinel/internal/model"

// HoursPerMonth is the 30-day month used for hourly rates.
const HoursPerMonth = 30 * 24

// MonthlyProjection sums monthly_target over exactly the active streams.
func MonthlyProjection(streams []model.IncomeStream) float64 {
	total := 0.0
	for _, s := range streams {
		if s.Status == model.StatusActive {
			total += s.MonthlyTarget
		}
	}
	return total
}

// Efficiency is the actual hourly rate over the target hourly rate, as a percentage.
// It is 0 when no time has elapsed or nothing is projected.
func Efficiency(totalEarnings, elapsedHours, monthlyProjection float64) float64 {
	if elapsedHours <= 0 || monthlyProjection <= 0 {
		return 0
	}
	hourlyActual := totalEarnings / elapsedHours
	hourlyTarget := monthlyProjection / HoursPerMonth
	return hourlyActual / hourlyTarget * 100
}

// ActiveCount counts streams with status active.
func ActiveCount(streams []model.IncomeStream) int {
	n := 0
	for _, s := range streams {
		if s.Status == model.StatusActive {
			n++
		}
	}
	return n
}

package loyalty

import "github.com/shopspring/decimal"

// PointsEarned is floor(total / 10); non-positive totals earn nothing.
func PointsEarned(total decimal.Decimal) int {
	if !total.IsPositive() {
		return 0
	}
	return int(total.Div(decimal.NewFromInt(pointsPerUnit)).Floor().IntPart())
}

package marketmath

import "math"

// AmountStep 交易所数量字段的最小单位（BTC 为 1e-8，即 1 satoshi）。
//
// 远端 API 的数量字段在多次部分成交后会累积浮点误差，
// 本包所有对账用的数量在比较前都先对齐到该最小单位。
const AmountStep = 1e-8

// ERound rounds v to the exchange's minimum amount unit.
//
// Used to absorb floating-point drift accumulated on the remote side
// (e.g. pending_amount after repeated partial fills).
func ERound(v float64) float64 {
	return math.Round(v/AmountStep) * AmountStep
}

// AlmostEqual reports whether a and b are equal within one unit of the
// rounding precision. This is the tolerance used to classify a delisted
// order as fully filled versus canceled.
//
// The bound is 1.5 steps rather than 1.0: inputs are expected to sit on
// the ERound grid, so real differences are whole multiples of AmountStep
// and the extra half step only absorbs representation error.
func AlmostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1.5*AmountStep
}

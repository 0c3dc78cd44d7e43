// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package nbutils computes money amounts with decimal arithmetic.
package nbutils

import (
	"fmt"

	"github.com/cockroachdb/apd/v2"
)

// Cents is the precision of the amounts in euros
const Cents = 0.01

var ctx = apd.Context{
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Traps:       apd.DefaultTraps,
	Rounding:    apd.RoundHalfUp,
	Precision:   128,
}

func decimal(value float64) *apd.Decimal {
	res, err := apd.New(0, 0).SetFloat64(value)
	if err != nil {
		panic(fmt.Errorf("invalid amount %f: %s", value, err))
	}
	return res
}

// roundDecimal rounds d in place to the given precision
func roundDecimal(d *apd.Decimal, precision float64) float64 {
	prec := decimal(precision)
	if _, err := ctx.Quo(d, d, prec); err != nil {
		panic(fmt.Errorf("error while rounding %s: %s", d, err))
	}
	if _, err := ctx.RoundToIntegralExact(d, d); err != nil {
		panic(fmt.Errorf("error while rounding %s: %s", d, err))
	}
	ctx.Mul(d, d, prec)
	res, err := d.Float64()
	if err != nil {
		panic(fmt.Errorf("error while rounding %s: %s", d, err))
	}
	return res
}

// Round rounds value half up to the given precision, which is a float such as:
//
// - 0.01 to round at the nearest cent
// - 10 to round at the nearest ten
func Round(value float64, precision float64) float64 {
	return roundDecimal(decimal(value), precision)
}

// Sum adds values as decimals and rounds the total to precision
func Sum(precision float64, values ...float64) float64 {
	total := apd.New(0, 0)
	for _, v := range values {
		ctx.Add(total, total, decimal(v))
	}
	return roundDecimal(total, precision)
}

// Mul returns quantity times the unit price, rounded to precision
func Mul(quantity int64, price, precision float64) float64 {
	res := apd.New(0, 0)
	ctx.Mul(res, apd.New(quantity, 0), decimal(price))
	return roundDecimal(res, precision)
}

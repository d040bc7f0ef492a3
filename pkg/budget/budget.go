package budget

import "time"

// Budget is the monthly spending limit for one category. There is at most one
// per (category, month, year).
type Budget struct {
	Id         int
	CategoryId int
	Month      time.Month
	Year       int
	Amount     float64
}

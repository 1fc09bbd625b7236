// Package services holds the business operations of the ledger.
//
// This file implements the strategy pattern for moving a recurring
// definition's cursor to its next due date. Each frequency has its own
// advancer; none of them clamp the day of month.

package services

import (
	"fmt"

	"saldo/internal/core"
)

// DateAdvancer computes the next due date from the current one.
type DateAdvancer interface {
	// Next returns core.ErrInvalidCalendarDate (as *core.InvalidCalendarDateError)
	// when the target month lacks the current day.
	Next(current core.Date) (core.Date, error)
}

// DailyAdvancer moves the cursor by one day.
type DailyAdvancer struct{}

func (DailyAdvancer) Next(current core.Date) (core.Date, error) {
	return current.AddDays(1), nil
}

// WeeklyAdvancer moves the cursor by seven days.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Next(current core.Date) (core.Date, error) {
	return current.AddDays(7), nil
}

// MonthlyAdvancer keeps the day and moves to the next month.
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Next(current core.Date) (core.Date, error) {
	year, month := current.Year(), current.Month()+1
	if month > 12 {
		year, month = year+1, 1
	}
	return core.ExactDate(year, month, current.Day())
}

// QuarterlyAdvancer snaps to the first month of the following quarter
// (January, April, July, October), keeping the day.
type QuarterlyAdvancer struct{}

func (QuarterlyAdvancer) Next(current core.Date) (core.Date, error) {
	year := current.Year()
	month := ((current.Month()-1)/3+1)*3 + 1
	if month > 12 {
		year, month = year+1, 1
	}
	return core.ExactDate(year, month, current.Day())
}

// YearlyAdvancer keeps month and day and moves to the next year.
type YearlyAdvancer struct{}

func (YearlyAdvancer) Next(current core.Date) (core.Date, error) {
	return core.ExactDate(current.Year()+1, current.Month(), current.Day())
}

var advanceStrategies = map[core.Frequency]DateAdvancer{
	core.Daily:     DailyAdvancer{},
	core.Weekly:    WeeklyAdvancer{},
	core.Monthly:   MonthlyAdvancer{},
	core.Quarterly: QuarterlyAdvancer{},
	core.Yearly:    YearlyAdvancer{},
}

// GetDateAdvancer returns the advancer for a frequency.
func GetDateAdvancer(frequency core.Frequency) (DateAdvancer, error) {
	advancer, ok := advanceStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return advancer, nil
}

// NextDueDate advances current by one period of frequency.
func NextDueDate(frequency core.Frequency, current core.Date) (core.Date, error) {
	advancer, err := GetDateAdvancer(frequency)
	if err != nil {
		return core.Date{}, err
	}
	return advancer.Next(current)
}

package payments

import "time"

// Policy sets the late-fee tiers, keyed to days elapsed since the calendar
// due date. The due date itself is day 1, so with first-of-month due dates
// the tiers read as days of the month.
type Policy struct {
	GraceDays    int
	StandardFee  float64
	StandardDays int
	EscalatedFee float64
}

// DefaultPolicy carries no fee through day 5, $75 through day 15, $150 after.
func DefaultPolicy() Policy {
	return Policy{
		GraceDays:    5,
		StandardFee:  75,
		StandardDays: 15,
		EscalatedFee: 150,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.GraceDays == 0 {
		p.GraceDays = d.GraceDays
	}
	if p.StandardFee == 0 {
		p.StandardFee = d.StandardFee
	}
	if p.StandardDays == 0 {
		p.StandardDays = d.StandardDays
	}
	if p.EscalatedFee == 0 {
		p.EscalatedFee = d.EscalatedFee
	}
	return p
}

// LateFee returns the fee owed on an obligation due on due and still unpaid
// as of asOf. Each tier replaces the previous one, nothing stacks.
func (p Policy) LateFee(due, asOf time.Time) float64 {
	day := daysBetween(due, asOf) + 1
	switch {
	case day <= p.GraceDays:
		return 0
	case day <= p.StandardDays:
		return p.StandardFee
	default:
		return p.EscalatedFee
	}
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

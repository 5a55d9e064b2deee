package gateway

import (
	"fmt"

	"github.com/fatflowers/pledger/pkg/types"
)

type IntervalUnit string

const (
	IntervalUnitDays   IntervalUnit = "days"
	IntervalUnitMonths IntervalUnit = "months"
)

// Interval is the length+unit pair used by interval-based gateways.
type Interval struct {
	Length int
	Unit   IntervalUnit
}

// UnlimitedOccurrences is the bounded occurrence count sent to gateways that
// require a finite integer when bill_times is 0 ("run indefinitely").
const UnlimitedOccurrences = 9999

// Occurrences translates a bill-times value to the occurrence count the
// gateway expects.
func Occurrences(billTimes int) int {
	if billTimes == 0 {
		return UnlimitedOccurrences
	}
	return billTimes
}

// IntervalFromPeriod translates the canonical period/frequency pair into a
// gateway interval.
func IntervalFromPeriod(period types.BillingPeriod, frequency int) (Interval, error) {
	if frequency < 1 {
		return Interval{}, fmt.Errorf("%w: frequency %d", ErrUnrecognizedInterval, frequency)
	}
	switch period {
	case types.BillingPeriodDay:
		return Interval{Length: frequency, Unit: IntervalUnitDays}, nil
	case types.BillingPeriodWeek:
		return Interval{Length: 7 * frequency, Unit: IntervalUnitDays}, nil
	case types.BillingPeriodMonth:
		return Interval{Length: frequency, Unit: IntervalUnitMonths}, nil
	case types.BillingPeriodQuarter:
		return Interval{Length: 3 * frequency, Unit: IntervalUnitMonths}, nil
	case types.BillingPeriodYear:
		return Interval{Length: 12 * frequency, Unit: IntervalUnitMonths}, nil
	}
	return Interval{}, fmt.Errorf("%w: period %q", ErrUnrecognizedInterval, period)
}

// BillingPeriod translates a gateway interval back to the canonical
// period/frequency pair, used during synchronize.
//
// The reverse mapping has no case for day or quarter: a days interval
// shorter than a week is unmapped, and a quarterly interval comes back as
// months and classifies as month. Callers only apply the result when it
// maps cleanly; see DESIGN.md before changing it.
func (iv Interval) BillingPeriod() (types.BillingPeriod, int, error) {
	switch {
	case iv.Unit == IntervalUnitDays && iv.Length >= 7:
		return types.BillingPeriodWeek, iv.Length / 7, nil
	case iv.Unit == IntervalUnitMonths && iv.Length >= 1 && iv.Length < 12:
		return types.BillingPeriodMonth, iv.Length, nil
	case iv.Unit == IntervalUnitMonths && iv.Length >= 12:
		return types.BillingPeriodYear, iv.Length / 12, nil
	}
	return "", 0, fmt.Errorf("%w: length=%d unit=%s", ErrUnrecognizedInterval, iv.Length, iv.Unit)
}

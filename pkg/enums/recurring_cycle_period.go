package enums

import "fmt"

// RecurringCyclePeriod is the unit of a recurring product's billing cycle.
type RecurringCyclePeriod string

const (
	RecurringCyclePeriodDays   RecurringCyclePeriod = "days"
	RecurringCyclePeriodWeeks  RecurringCyclePeriod = "weeks"
	RecurringCyclePeriodMonths RecurringCyclePeriod = "months"
	RecurringCyclePeriodYears  RecurringCyclePeriod = "years"
)

var validRecurringCyclePeriods = []RecurringCyclePeriod{
	RecurringCyclePeriodDays,
	RecurringCyclePeriodWeeks,
	RecurringCyclePeriodMonths,
	RecurringCyclePeriodYears,
}

// String implements fmt.Stringer.
func (r RecurringCyclePeriod) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RecurringCyclePeriod.
func (r RecurringCyclePeriod) IsValid() bool {
	for _, candidate := range validRecurringCyclePeriods {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRecurringCyclePeriod converts raw input into a RecurringCyclePeriod.
func ParseRecurringCyclePeriod(value string) (RecurringCyclePeriod, error) {
	for _, candidate := range validRecurringCyclePeriods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recurring cycle period %q", value)
}

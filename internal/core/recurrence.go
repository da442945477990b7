package core

import "time"

// AddFrequency advances base by interval units of the given frequency.
// Month and year advancement is calendar-aware: when the base day does not
// exist in the target month the date clamps to the last day of that month
// (Jan 31 + 1 month = Feb 28/29). Unknown frequencies are an explicit
// error; there is no fallback unit.
func AddFrequency(base time.Time, f Frequency, interval int) (time.Time, error) {
	if interval < 1 {
		return time.Time{}, &InvalidArgumentError{Reason: "frequency interval must be at least 1"}
	}
	switch f {
	case Daily:
		return base.AddDate(0, 0, interval), nil
	case Weekly:
		return base.AddDate(0, 0, 7*interval), nil
	case Monthly:
		return addMonthsClamped(base, interval), nil
	case Yearly:
		return addMonthsClamped(base, 12*interval), nil
	default:
		return time.Time{}, &InvalidArgumentError{Reason: "unknown frequency " + string(f)}
	}
}

// NextExecution computes a schedule's next occurrence: the last execution
// when set, else the start date, advanced by one frequency step. Pure.
func NextExecution(s *RecurringSchedule) (time.Time, error) {
	base := s.StartDate
	if !s.LastExecutionDate.IsZero() {
		base = s.LastExecutionDate
	}
	return AddFrequency(base, s.Frequency, s.FrequencyInterval)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

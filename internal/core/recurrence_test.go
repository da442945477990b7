package core

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func TestAddFrequency(t *testing.T) {
	cases := []struct {
		name     string
		base     time.Time
		f        Frequency
		interval int
		want     time.Time
	}{
		{"daily", date(2026, time.March, 15), Daily, 1, date(2026, time.March, 16)},
		{"daily interval", date(2026, time.March, 15), Daily, 10, date(2026, time.March, 25)},
		{"weekly", date(2026, time.March, 15), Weekly, 2, date(2026, time.March, 29)},
		{"monthly", date(2026, time.March, 15), Monthly, 1, date(2026, time.April, 15)},
		{"monthly clamps to feb", date(2026, time.January, 31), Monthly, 1, date(2026, time.February, 28)},
		{"monthly clamps to leap feb", date(2024, time.January, 31), Monthly, 1, date(2024, time.February, 29)},
		{"monthly clamp does not stick", date(2026, time.January, 31), Monthly, 2, date(2026, time.March, 31)},
		{"yearly", date(2026, time.March, 15), Yearly, 1, date(2027, time.March, 15)},
		{"yearly from leap day", date(2024, time.February, 29), Yearly, 1, date(2025, time.February, 28)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AddFrequency(tc.base, tc.f, tc.interval)
			if err != nil {
				t.Fatalf("AddFrequency: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("AddFrequency(%v, %s, %d) = %v, want %v", tc.base, tc.f, tc.interval, got, tc.want)
			}
		})
	}
}

func TestAddFrequency_Rejections(t *testing.T) {
	var argErr *InvalidArgumentError
	if _, err := AddFrequency(date(2026, time.March, 15), Frequency("FORTNIGHTLY"), 1); !errors.As(err, &argErr) {
		t.Errorf("unknown frequency: err = %v, want InvalidArgumentError", err)
	}
	if _, err := AddFrequency(date(2026, time.March, 15), Daily, 0); !errors.As(err, &argErr) {
		t.Errorf("zero interval: err = %v, want InvalidArgumentError", err)
	}
}

func TestNextExecution(t *testing.T) {
	s := &RecurringSchedule{
		StartDate:         date(2026, time.March, 1),
		Frequency:         Weekly,
		FrequencyInterval: 1,
	}
	got, err := NextExecution(s)
	if err != nil {
		t.Fatalf("NextExecution: %v", err)
	}
	if want := date(2026, time.March, 8); !got.Equal(want) {
		t.Errorf("from start date = %v, want %v", got, want)
	}

	s.LastExecutionDate = date(2026, time.March, 22)
	got, err = NextExecution(s)
	if err != nil {
		t.Fatalf("NextExecution: %v", err)
	}
	if want := date(2026, time.March, 29); !got.Equal(want) {
		t.Errorf("from last execution = %v, want %v", got, want)
	}
}

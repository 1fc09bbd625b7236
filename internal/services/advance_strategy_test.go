package services

import (
	"errors"
	"testing"

	"saldo/internal/core"
)

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		current   core.Date
		want      string
	}{
		{"daily", core.Daily, core.NewDate(2024, 2, 28), "2024-02-29"},
		{"daily over year end", core.Daily, core.NewDate(2023, 12, 31), "2024-01-01"},
		{"weekly", core.Weekly, core.NewDate(2024, 1, 29), "2024-02-05"},
		{"monthly", core.Monthly, core.NewDate(2024, 1, 15), "2024-02-15"},
		{"monthly december", core.Monthly, core.NewDate(2024, 12, 5), "2025-01-05"},
		{"monthly 30th into march", core.Monthly, core.NewDate(2024, 2, 29), "2024-03-29"},
		{"quarterly from january", core.Quarterly, core.NewDate(2024, 1, 10), "2024-04-10"},
		{"quarterly from march", core.Quarterly, core.NewDate(2024, 3, 10), "2024-04-10"},
		{"quarterly from may", core.Quarterly, core.NewDate(2024, 5, 20), "2024-07-20"},
		{"quarterly from september", core.Quarterly, core.NewDate(2024, 9, 1), "2024-10-01"},
		{"quarterly from november", core.Quarterly, core.NewDate(2024, 11, 3), "2025-01-03"},
		{"yearly", core.Yearly, core.NewDate(2024, 6, 30), "2025-06-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDueDate(tt.frequency, tt.current)
			if err != nil {
				t.Fatalf("NextDueDate() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("NextDueDate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNextDueDateInvalidCalendarDate(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.Frequency
		current   core.Date
		wantMonth int
		wantDay   int
	}{
		{"monthly january 31", core.Monthly, core.NewDate(2024, 1, 31), 2, 31},
		{"monthly march 31", core.Monthly, core.NewDate(2024, 3, 31), 4, 31},
		{"quarterly january 31", core.Quarterly, core.NewDate(2024, 1, 31), 4, 31},
		{"yearly leap day", core.Yearly, core.NewDate(2024, 2, 29), 2, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NextDueDate(tt.frequency, tt.current)
			if !errors.Is(err, core.ErrInvalidCalendarDate) {
				t.Fatalf("NextDueDate() error = %v, want ErrInvalidCalendarDate", err)
			}
			var cal *core.InvalidCalendarDateError
			if !errors.As(err, &cal) {
				t.Fatalf("error is not *InvalidCalendarDateError: %T", err)
			}
			if cal.Month != tt.wantMonth || cal.Day != tt.wantDay {
				t.Errorf("invalid date = %d-%d, want %d-%d", cal.Month, cal.Day, tt.wantMonth, tt.wantDay)
			}
		})
	}
}

func TestGetDateAdvancer(t *testing.T) {
	for _, f := range []core.Frequency{core.Daily, core.Weekly, core.Monthly, core.Quarterly, core.Yearly} {
		if _, err := GetDateAdvancer(f); err != nil {
			t.Errorf("GetDateAdvancer(%s) error = %v", f, err)
		}
	}
	if _, err := GetDateAdvancer("hourly"); err == nil {
		t.Error("GetDateAdvancer(hourly) should fail")
	}
}

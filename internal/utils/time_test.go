package utils

import "testing"

func TestWeekMonday(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-03-04", "2024-03-04"}, // Monday maps to itself
		{"2024-03-06", "2024-03-04"}, // Wednesday
		{"2024-03-09", "2024-03-04"}, // Saturday
		{"2024-03-10", "2024-03-04"}, // Sunday belongs to the preceding Monday
		{"2024-03-11", "2024-03-11"}, // next Monday
	}

	for _, tt := range tests {
		got, err := WeekMonday(tt.date)
		if err != nil {
			t.Fatalf("WeekMonday(%s) failed: %v", tt.date, err)
		}
		if got != tt.want {
			t.Errorf("WeekMonday(%s) = %s, want %s", tt.date, got, tt.want)
		}
	}
}

func TestWeekMondayInvalidDate(t *testing.T) {
	if _, err := WeekMonday("03/04/2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestWeekDates(t *testing.T) {
	dates, err := WeekDates("2024-03-04")
	if err != nil {
		t.Fatalf("WeekDates failed: %v", err)
	}
	if len(dates) != 7 {
		t.Fatalf("expected 7 dates, got %d", len(dates))
	}
	if dates[0] != "2024-03-04" {
		t.Errorf("first date: got %s, want 2024-03-04", dates[0])
	}
	if dates[6] != "2024-03-10" {
		t.Errorf("last date: got %s, want 2024-03-10", dates[6])
	}
}

func TestAddDaysAcrossMonthBoundary(t *testing.T) {
	got, err := AddDays("2024-02-28", 2)
	if err != nil {
		t.Fatalf("AddDays failed: %v", err)
	}
	// 2024 is a leap year
	if got != "2024-03-01" {
		t.Errorf("AddDays(2024-02-28, 2) = %s, want 2024-03-01", got)
	}

	got, err = AddDays("2024-06-01", -1)
	if err != nil {
		t.Fatalf("AddDays failed: %v", err)
	}
	if got != "2024-05-31" {
		t.Errorf("AddDays(2024-06-01, -1) = %s, want 2024-05-31", got)
	}
}

package services

import (
	"testing"
	"time"
)

func TestWeekStart(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "wednesday goes back to monday",
			in:   time.Date(2025, time.June, 11, 15, 30, 0, 0, time.UTC),
			want: time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday stays put",
			in:   time.Date(2025, time.June, 9, 8, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the week that started six days earlier",
			in:   time.Date(2025, time.June, 15, 23, 59, 59, 0, time.UTC),
			want: time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "crosses a month boundary",
			in:   time.Date(2025, time.July, 2, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeekStart(tc.in)
			if !got.Equal(tc.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestWeekStartNonUTCInput(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 01:00 Monday in UTC+10 is still Sunday in UTC.
	in := time.Date(2025, time.June, 16, 1, 0, 0, 0, loc)
	want := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)

	if got := WeekStart(in); !got.Equal(want) {
		t.Errorf("WeekStart(%v) = %v, want %v", in, got, want)
	}
}

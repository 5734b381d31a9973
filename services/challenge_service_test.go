package services

import (
	"testing"
	"time"

	"cookNestAPI/internal/types/challenge"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestPeriodEndWeekly(t *testing.T) {
	// Wednesday 2025-06-11. The week closes Sunday 2025-06-15.
	ref := time.Date(2025, 6, 11, 14, 30, 12, 0, time.UTC)
	end := PeriodEnd(challenge.RecurrenceWeekly, ref)

	want := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
	if !end.Equal(want) {
		t.Errorf("weekly end = %s, want %s", end, want)
	}
	if end.Weekday() != time.Sunday {
		t.Errorf("weekly end falls on %s, want Sunday", end.Weekday())
	}
}

func TestPeriodEndWeeklyEveryWeekday(t *testing.T) {
	// Monday 2025-06-09 through Sunday 2025-06-15 all close on the same Sunday.
	want := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
	for day := 9; day <= 15; day++ {
		ref := time.Date(2025, 6, day, 8, 0, 0, 0, time.UTC)
		end := PeriodEnd(challenge.RecurrenceWeekly, ref)
		if !end.Equal(want) {
			t.Errorf("ref 2025-06-%02d: weekly end = %s, want %s", day, end, want)
		}
		if shift := end.Sub(ref); shift < 0 || shift > 7*24*time.Hour {
			t.Errorf("ref 2025-06-%02d: end is %s after ref, want within 0-6 days", day, shift)
		}
	}
}

func TestPeriodEndWeeklyOnSunday(t *testing.T) {
	// Already Sunday at midnight: 0-day shift, same calendar day.
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	end := PeriodEnd(challenge.RecurrenceWeekly, ref)

	want := time.Date(2025, 6, 15, 23, 59, 59, 0, time.UTC)
	if !end.Equal(want) {
		t.Errorf("weekly end on Sunday = %s, want %s", end, want)
	}
}

func TestPeriodEndMonthly(t *testing.T) {
	cases := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{
			name: "leap year February",
			ref:  time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC),
			want: time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "non-leap February",
			ref:  time.Date(2023, 2, 15, 10, 0, 0, 0, time.UTC),
			want: time.Date(2023, 2, 28, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "December stays in the same year",
			ref:  time.Date(2025, 12, 10, 10, 0, 0, 0, time.UTC),
			want: time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "30-day month",
			ref:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 4, 30, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "31-day month, last day",
			ref:  time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC),
			want: time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end := PeriodEnd(challenge.RecurrenceMonthly, tc.ref)
			if !end.Equal(tc.want) {
				t.Errorf("monthly end = %s, want %s", end, tc.want)
			}
		})
	}
}

func TestPeriodEndAnnual(t *testing.T) {
	cases := []struct {
		name string
		ref  time.Time
	}{
		{name: "start of year", ref: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "mid year", ref: time.Date(2025, 7, 4, 12, 0, 0, 0, time.UTC)},
		{name: "boundary is idempotent", ref: time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)},
	}

	want := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end := PeriodEnd(challenge.RecurrenceAnnual, tc.ref)
			if !end.Equal(want) {
				t.Errorf("annual end = %s, want %s", end, want)
			}
		})
	}
}

func TestPeriodEndUnknownRecurrence(t *testing.T) {
	ref := time.Date(2025, 3, 3, 9, 41, 27, 0, time.UTC)

	for _, tag := range []challenge.Recurrence{"daily", "", "biweekly"} {
		end := PeriodEnd(tag, ref)
		want := ref.AddDate(0, 0, 7)
		if !end.Equal(want) {
			t.Errorf("recurrence %q: end = %s, want ref + 7 days = %s", tag, end, want)
		}
		// Time of day must survive untouched on the fallback path.
		if end.Hour() != 9 || end.Minute() != 41 || end.Second() != 27 {
			t.Errorf("recurrence %q: time of day normalized to %s", tag, end.Format("15:04:05"))
		}
	}
}

func TestPeriodEndIsPure(t *testing.T) {
	ref := time.Date(2024, 2, 29, 18, 0, 0, 0, time.UTC)
	first := PeriodEnd(challenge.RecurrenceMonthly, ref)
	for i := 0; i < 5; i++ {
		if got := PeriodEnd(challenge.RecurrenceMonthly, ref); !got.Equal(first) {
			t.Fatalf("call %d returned %s, first call returned %s", i, got, first)
		}
	}
}

func TestCurrentChallenges(t *testing.T) {
	svc := NewChallengeService(nil)
	svc.SetClock(fixedClock(time.Date(2025, 6, 11, 14, 30, 12, 987654321, time.UTC)))

	live := svc.CurrentChallenges()
	if len(live) != len(challengeCatalog) {
		t.Fatalf("got %d challenges, want %d", len(live), len(challengeCatalog))
	}

	for i, lc := range live {
		if lc.Title != challengeCatalog[i].Title {
			t.Errorf("position %d: got %q, want %q (catalog order must be preserved)", i, lc.Title, challengeCatalog[i].Title)
		}
		if lc.EndDate.Nanosecond() != 0 {
			t.Errorf("%s: end date carries sub-second precision: %s", lc.Title, lc.EndDate)
		}
		if lc.EndDate.Location() != time.UTC {
			t.Errorf("%s: end date not in UTC", lc.Title)
		}
	}
}

func TestCurrentChallengesDeterministic(t *testing.T) {
	svc := NewChallengeService(nil)
	svc.SetClock(fixedClock(time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC)))

	first := svc.CurrentChallenges()
	second := svc.CurrentChallenges()

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("position %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCurrentChallengesMatchRecurrence(t *testing.T) {
	// Tuesday 2025-09-02.
	svc := NewChallengeService(nil)
	svc.SetClock(fixedClock(time.Date(2025, 9, 2, 7, 15, 0, 0, time.UTC)))

	wantByRecurrence := map[challenge.Recurrence]time.Time{
		challenge.RecurrenceWeekly:  time.Date(2025, 9, 7, 23, 59, 59, 0, time.UTC),
		challenge.RecurrenceMonthly: time.Date(2025, 9, 30, 23, 59, 59, 0, time.UTC),
		challenge.RecurrenceAnnual:  time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
	}

	for _, lc := range svc.CurrentChallenges() {
		want, ok := wantByRecurrence[lc.Recurrence]
		if !ok {
			t.Fatalf("%s: unexpected recurrence %q in catalog", lc.Title, lc.Recurrence)
		}
		if !lc.EndDate.Equal(want) {
			t.Errorf("%s (%s): end = %s, want %s", lc.Title, lc.Recurrence, lc.EndDate, want)
		}
	}
}

package timerange

import (
	"testing"
	"time"
)

func TestParse_KnownTokens(t *testing.T) {
	for _, tok := range []string{"today", "thisWeek", "thisMonth", "thisYear", "allTime"} {
		if got := Parse(tok); string(got) != tok {
			t.Errorf("Parse(%q) = %q", tok, got)
		}
	}
}

func TestParse_UnknownDefaultsToAllTime(t *testing.T) {
	for _, tok := range []string{"", "lastWeek", "THISWEEK", "7d"} {
		if got := Parse(tok); got != AllTime {
			t.Errorf("Parse(%q) = %q, want allTime", tok, got)
		}
	}
}

func TestResolve_Today(t *testing.T) {
	now := time.Date(2024, 3, 15, 17, 42, 11, 500, time.UTC)
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := Resolve(Today, now); !got.Equal(want) {
		t.Errorf("Resolve(today) = %v, want %v", got, want)
	}
}

func TestResolve_ThisWeekIsRolling(t *testing.T) {
	now := time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC)
	want := time.Date(2024, 3, 8, 17, 0, 0, 0, time.UTC)
	if got := Resolve(ThisWeek, now); !got.Equal(want) {
		t.Errorf("Resolve(thisWeek) = %v, want %v", got, want)
	}
}

func TestResolve_ThisMonth(t *testing.T) {
	now := time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC)
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if got := Resolve(ThisMonth, now); !got.Equal(want) {
		t.Errorf("Resolve(thisMonth) = %v, want %v", got, want)
	}
}

func TestResolve_ThisYear(t *testing.T) {
	now := time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC)
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := Resolve(ThisYear, now); !got.Equal(want) {
		t.Errorf("Resolve(thisYear) = %v, want %v", got, want)
	}
}

func TestResolve_AllTimeIgnoresNow(t *testing.T) {
	for _, now := range []time.Time{
		time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	} {
		if got := Resolve(AllTime, now); !got.Equal(Epoch) {
			t.Errorf("Resolve(allTime, %v) = %v, want epoch", now, got)
		}
	}
}

package exam

import (
	"testing"
	"time"

	"github.com/somang-edu/eduportal-backend/internal/model"
)

func windowExam(limitMinutes int, start, end time.Time) *model.Exam {
	return &model.Exam{
		Title:            "midterm",
		TimeLimitMinutes: limitMinutes,
		WindowStart:      start,
		WindowEnd:        end,
	}
}

func TestClassify(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		limit         int
		start, end    time.Time
		now           time.Time
		state         GateState
		untilStart    int
		remaining     int
	}{
		{
			name:  "before window",
			limit: 60, start: base, end: base.Add(time.Hour),
			now:   base.Add(-90 * time.Second),
			state: GateWaiting, untilStart: 90,
		},
		{
			name:  "window open, full budget",
			limit: 30, start: base, end: base.Add(time.Hour),
			now:   base,
			state: GateEnterable, remaining: 1800,
		},
		{
			name:  "window closing caps the budget",
			limit: 60, start: base, end: base.Add(time.Hour),
			now:   base.Add(50 * time.Minute),
			state: GateEnterable, remaining: 600,
		},
		{
			name:  "exactly at window end",
			limit: 60, start: base, end: base.Add(time.Hour),
			now:   base.Add(time.Hour),
			state: GateEnded,
		},
		{
			name:  "after window end",
			limit: 60, start: base, end: base.Add(time.Hour),
			now:   base.Add(2 * time.Hour),
			state: GateEnded,
		},
		{
			name:  "exactly at window start",
			limit: 10, start: base, end: base.Add(5 * time.Minute),
			now:   base,
			state: GateEnterable, remaining: 300,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(windowExam(tc.limit, tc.start, tc.end), tc.now)
			if got.State != tc.state {
				t.Fatalf("expected state=%s, got=%s", tc.state, got.State)
			}
			if got.SecondsUntilStart != tc.untilStart {
				t.Fatalf("expected until_start=%d, got=%d", tc.untilStart, got.SecondsUntilStart)
			}
			if got.SecondsRemaining != tc.remaining {
				t.Fatalf("expected remaining=%d, got=%d", tc.remaining, got.SecondsRemaining)
			}
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	e := windowExam(45, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC))
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

	first := Classify(e, now)
	for i := 0; i < 5; i++ {
		if got := Classify(e, now); got != first {
			t.Fatalf("classification changed between identical calls: %+v vs %+v", first, got)
		}
	}
}

package state

import (
	"testing"

	"github.com/hamed0406/urlcheck/internal/domain"
)

func up(ms int64) domain.Outcome {
	return domain.Outcome{TargetURL: "https://a", Success: true, StatusCode: 200, LatencyMS: ms}
}

func down(ms int64, reason string) domain.Outcome {
	return domain.Outcome{TargetURL: "https://a", Reason: reason, LatencyMS: ms}
}

func TestTracker_FirstRecordNeverSilent(t *testing.T) {
	for _, o := range []domain.Outcome{up(10), down(10, "x")} {
		var tr Tracker
		if st := tr.Record(o); st.Silent {
			t.Fatalf("first record silent for %+v", o)
		}
	}
}

func TestTracker_SilentOnlyOnRepeat(t *testing.T) {
	var tr Tracker
	seq := []struct {
		in         domain.Outcome
		wantSilent bool
	}{
		{up(5), false},
		{up(7), true},
		{down(9, "500 <> 200"), false},
		{down(3, "timeout"), true}, // different reason, same classification
		{up(4), false},
	}
	for i, s := range seq {
		st := tr.Record(s.in)
		if st.Silent != s.wantSilent {
			t.Fatalf("step %d: silent=%v want %v", i, st.Silent, s.wantSilent)
		}
		if st.Success != s.in.Success {
			t.Fatalf("step %d: success mismatch", i)
		}
	}
}

func TestTracker_Rendering(t *testing.T) {
	var tr Tracker
	st := tr.Record(up(42))
	if st.Message != "Success, 42 ms" {
		t.Fatalf("message %q", st.Message)
	}
	if st.Title != TitleUp || st.Detail != "https://a is available (200)" {
		t.Fatalf("title/detail: %q %q", st.Title, st.Detail)
	}

	st = tr.Record(down(1003, "404 <> 200"))
	if st.Message != "Failed after 1003 ms: 404 <> 200" {
		t.Fatalf("message %q", st.Message)
	}
	if st.Title != TitleDown || st.Detail != "404 <> 200" {
		t.Fatalf("title/detail: %q %q", st.Title, st.Detail)
	}
	if st.Outcome.LatencyMS != 1003 {
		t.Fatalf("outcome not carried: %+v", st.Outcome)
	}
}

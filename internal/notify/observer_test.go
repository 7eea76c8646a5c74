package notify

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/urlcheck/internal/domain"
)

func status(success, silent bool) domain.Status {
	return domain.Status{Success: success, Silent: silent, Message: "m", Outcome: domain.Outcome{TargetURL: "https://a", Success: success}}
}

func TestLatest(t *testing.T) {
	var l Latest
	if _, ok := l.Get(); ok {
		t.Fatal("expected no status yet")
	}
	l.OnStatus(status(true, false))
	l.OnStatus(status(false, false))
	st, ok := l.Get()
	if !ok || st.Success {
		t.Fatalf("want latest failure, got %+v ok=%v", st, ok)
	}
}

func TestLogObserver_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := LogObserver{Logger: zap.New(core)}

	obs.OnStatus(status(true, false))
	obs.OnStatus(status(true, true))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "status_changed" || entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("transition entry: %+v", entries[0].Entry)
	}
	if entries[1].Message != "status" || entries[1].Level != zapcore.DebugLevel {
		t.Fatalf("repeat entry: %+v", entries[1].Entry)
	}
}

func TestAsync_PreservesOrderAndDrainsOnClose(t *testing.T) {
	var mu sync.Mutex
	var got []bool
	a := Async(ObserverFunc(func(st domain.Status) {
		mu.Lock()
		got = append(got, st.Success)
		mu.Unlock()
	}), 16, zap.NewNop())

	want := []bool{true, false, false, true, true}
	for _, s := range want {
		a.OnStatus(status(s, false))
	}
	_ = a.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != len(want) {
		t.Fatalf("delivered %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order broken at %d: %v", i, got)
		}
	}
}

func TestAsync_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	a := Async(ObserverFunc(func(domain.Status) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	}), 1, zap.NewNop())

	a.OnStatus(status(true, false)) // picked up by the worker, blocks
	<-started
	a.OnStatus(status(true, true)) // fills the queue
	done := make(chan struct{})
	go func() {
		a.OnStatus(status(true, true)) // dropped, must not block
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnStatus blocked on a full queue")
	}
	if a.Dropped() != 1 {
		t.Fatalf("dropped=%d want 1", a.Dropped())
	}
	close(release)
	_ = a.Close()
}

func TestAsync_RecoversObserverPanic(t *testing.T) {
	n := 0
	a := Async(ObserverFunc(func(st domain.Status) {
		n++
		if n == 1 {
			panic("boom")
		}
	}), 4, zap.NewNop())
	a.OnStatus(status(true, false))
	a.OnStatus(status(true, true))
	_ = a.Close()
	if n != 2 {
		t.Fatalf("worker died after panic, calls=%d", n)
	}
	a.OnStatus(status(true, true)) // after Close: ignored, no panic
}

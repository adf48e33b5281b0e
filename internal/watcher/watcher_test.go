package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/southbay/edlconv/internal/logging"
)

type recorded struct {
	path  string
	event EventType
}

func newTestWatcher(t *testing.T) (*PollingWatcher, *[]recorded) {
	t.Helper()
	w := NewPollingWatcher(time.Hour, ".edl", logging.Discard())
	var got []recorded
	w.OnChange(func(path string, event EventType) {
		got = append(got, recorded{path, event})
	})
	return w, &got
}

func TestScan_ReportsSettledFiles(t *testing.T) {
	dir := t.TempDir()
	w, got := newTestWatcher(t)

	edlPath := filepath.Join(dir, "Sc010.EDL")
	if err := os.WriteFile(edlPath, []byte("000001"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := w.scan(dir); err != nil {
		t.Fatalf("scan() error = %v", err)
	}
	if len(*got) != 0 {
		t.Fatalf("first scan reported %v, want nothing until the file settles", *got)
	}

	if err := w.scan(dir); err != nil {
		t.Fatalf("scan() error = %v", err)
	}
	if len(*got) != 1 || (*got)[0] != (recorded{edlPath, EventCreate}) {
		t.Fatalf("events = %v, want one create for %s", *got, edlPath)
	}

	if err := w.scan(dir); err != nil {
		t.Fatalf("scan() error = %v", err)
	}
	if len(*got) != 1 {
		t.Errorf("unchanged file reported again: %v", *got)
	}
}

func TestScan_ModifyAndDelete(t *testing.T) {
	dir := t.TempDir()
	w, got := newTestWatcher(t)

	p := filepath.Join(dir, "a.edl")
	if err := os.WriteFile(p, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	w.scan(dir)
	w.scan(dir)

	if err := os.WriteFile(p, []byte("one two"), 0o644); err != nil {
		t.Fatal(err)
	}
	w.scan(dir)
	w.scan(dir)

	if err := os.Remove(p); err != nil {
		t.Fatal(err)
	}
	w.scan(dir)

	want := []recorded{{p, EventCreate}, {p, EventModify}, {p, EventDelete}}
	if len(*got) != len(want) {
		t.Fatalf("events = %v, want %v", *got, want)
	}
	for i := range want {
		if (*got)[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, (*got)[i], want[i])
		}
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	w := NewPollingWatcher(10*time.Millisecond, ".edl", logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, t.TempDir()) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}

func TestWatch_NotADirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.edl")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w := NewPollingWatcher(0, ".edl", logging.Discard())
	if err := w.Watch(context.Background(), f); err == nil {
		t.Fatal("Watch() on a file should fail")
	}
}

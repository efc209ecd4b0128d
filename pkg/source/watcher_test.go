package source

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNewWatcher(t *testing.T) {
	if _, err := NewWatcher(&WatcherConfig{}, nil); err == nil {
		t.Error("NewWatcher() accepted an empty path")
	}

	w, err := NewWatcher(&WatcherConfig{Path: t.TempDir(), Extensions: []string{".T3D"}}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() on an idle watcher error = %v", err)
	}
}

func TestWatcher_ShouldProcess(t *testing.T) {
	w := &Watcher{config: &WatcherConfig{Extensions: []string{".T3D"}, SkipHidden: true}}

	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/x/Rock.T3D", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/x/rock.t3d", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/x/Rock.T3D", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/x/notes.txt", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/x/.Rock.T3D", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := w.shouldProcess(tt.event); got != tt.want {
			t.Errorf("shouldProcess(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestWatcher_TriggersOnChange(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(&WatcherConfig{
		Path:             dir,
		DebounceInterval: 50 * time.Millisecond,
		Extensions:       []string{".T3D"},
		SkipHidden:       true,
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	fired := make(chan struct{}, 1)

	go w.Watch(ctx, func(ctx context.Context, changed []string) error {
		mu.Lock()
		got = append(got, changed...)
		mu.Unlock()
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	})
	defer w.Stop()

	// Let the watcher register the directory.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "Rock.T3D"), "Begin Object")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not triggered")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) == 0 || filepath.Base(got[0]) != "Rock.T3D" {
		t.Errorf("changed = %v, want [.../Rock.T3D]", got)
	}
}

func TestDebouncer_CoalescesEvents(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
	}

	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("callback ran %d times, want 1", n)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", n)
	}
}

// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/pkgsettings/pkgsettings/internal/testutil"
)

const testDebounce = 50 * time.Millisecond

func newWatcher(t *testing.T, opts Options) *Watcher {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = testDebounce
	}
	w, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return w
}

// runWatcher starts w and returns a channel receiving every trigger batch.
func runWatcher(t *testing.T, w *Watcher) <-chan []string {
	t.Helper()
	batches := make(chan []string, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []string) error {
			batches <- changed
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})
	// Let the event loop start before the test writes files.
	time.Sleep(20 * time.Millisecond)
	return batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case got := <-batches:
		return got
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for trigger")
		return nil
	}
}

func TestRun_CoalescesBurst(t *testing.T) {
	root := t.TempDir()
	w := newWatcher(t, Options{Root: root, Debounce: 150 * time.Millisecond})
	batches := runWatcher(t, w)

	for _, name := range []string{"a.go", "b.go", "package.toml"} {
		testutil.MustWriteFile(t, filepath.Join(root, name), "x")
		time.Sleep(10 * time.Millisecond)
	}

	got := waitBatch(t, batches)
	for _, want := range []string{"a.go", "b.go", "package.toml"} {
		if !slices.Contains(got, want) {
			t.Errorf("batch %v missing %s", got, want)
		}
	}
	if !slices.IsSorted(got) {
		t.Errorf("batch %v is not sorted", got)
	}
}

func TestRun_IgnoresIrrelevantFiles(t *testing.T) {
	root := t.TempDir()
	w := newWatcher(t, Options{Root: root, Patterns: []string{"**/package.toml"}})
	batches := runWatcher(t, w)

	testutil.MustWriteFile(t, filepath.Join(root, "notes.txt"), "x")
	time.Sleep(3 * testDebounce)
	testutil.MustWriteFile(t, filepath.Join(root, "package.toml"), "[package]\n")

	if got := waitBatch(t, batches); !slices.Equal(got, []string{"package.toml"}) {
		t.Errorf("batch = %v, want [package.toml]", got)
	}
}

func TestRun_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	w := newWatcher(t, Options{Root: root, Patterns: []string{"**/package.toml"}})
	batches := runWatcher(t, w)

	sub := filepath.Join(root, "svc")
	testutil.MustMkdirAll(t, sub, 0o755)
	// Give the event loop time to register the directory.
	time.Sleep(3 * testDebounce)
	testutil.MustWriteFile(t, filepath.Join(sub, "package.toml"), "[package]\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-batches:
			if slices.Contains(got, "svc/package.toml") {
				return
			}
		case <-deadline:
			t.Fatal("change in new directory was not reported")
		}
	}
}

func TestRun_TriggerErrorKeepsWatching(t *testing.T) {
	root := t.TempDir()
	w := newWatcher(t, Options{Root: root})

	calls := make(chan struct{}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context, []string) error {
			calls <- struct{}{}
			return errors.New("boom")
		})
	}()
	time.Sleep(20 * time.Millisecond)

	for i := range 2 {
		testutil.MustWriteFile(t, filepath.Join(root, "a.go"), "x")
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatalf("trigger call %d did not happen", i+1)
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v, want nil after cancel", err)
	}
}

func TestRun_SecondCallFails(t *testing.T) {
	w := newWatcher(t, Options{Root: t.TempDir()})
	runWatcher(t, w)

	if err := w.Run(context.Background(), nil); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestRelevant(t *testing.T) {
	w := newWatcher(t, Options{
		Root:     t.TempDir(),
		Patterns: []string{"**/package.toml", "cmd/*.go"},
		Exclude:  []string{"cmd/settings_gen.go"},
	})

	tests := []struct {
		rel  string
		want bool
	}{
		{"package.toml", true},
		{"a/b/package.toml", true},
		{"cmd/main.go", true},
		{"cmd/settings_gen.go", false},
		{"other/main.go", false},
		{".git/package.toml", false},
		{"cmd/main.go~", false},
	}
	for _, tt := range tests {
		if got := w.Relevant(tt.rel); got != tt.want {
			t.Errorf("Relevant(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestNew_RejectsInvalidPattern(t *testing.T) {
	for _, opts := range []Options{
		{Root: t.TempDir(), Patterns: []string{"[unclosed"}},
		{Root: t.TempDir(), Exclude: []string{"{a,b"}},
	} {
		if _, err := New(opts); !errors.Is(err, ErrInvalidPattern) {
			t.Errorf("New(%+v) error = %v, want ErrInvalidPattern", opts, err)
		}
	}
}

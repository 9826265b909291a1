package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/adapters/watcher"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) record(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, paths)
}

func (r *recorder) get() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestDebouncer_SinglePath(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/app/index.js")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/app/index.js"}}, rec.get())
	})
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/app/b.js")
		time.Sleep(50 * time.Millisecond)
		d.Add("/app/a.js")
		time.Sleep(50 * time.Millisecond)
		d.Add("/app/b.js")

		// The window restarts with every change.
		time.Sleep(90 * time.Millisecond)
		synctest.Wait()
		require.Empty(t, rec.get())

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, [][]string{{"/app/a.js", "/app/b.js"}}, rec.get())
	})
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/app/a.js")
		time.Sleep(150 * time.Millisecond)
		d.Add("/app/b.js")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/app/a.js"}, {"/app/b.js"}}, rec.get())
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/app/a.js")
		d.Stop()
		d.Add("/app/b.js")

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()

		assert.Empty(t, rec.get())
	})
}

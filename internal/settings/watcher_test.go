package settings

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reloadRecorder struct {
	mu      sync.Mutex
	results []Settings
	errs    []error
}

func (r *reloadRecorder) record(s Settings, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.errs = append(r.errs, err)
		return
	}
	r.results = append(r.results, s)
}

func (r *reloadRecorder) last() (Settings, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.results) == 0 {
		return Settings{}, 0, len(r.errs)
	}
	return r.results[len(r.results)-1], len(r.results), len(r.errs)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "electron-settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model":"first"}`), 0o600))

	rec := &reloadRecorder{}
	w, err := NewWatcher(NewSource(path), rec.record, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, "first", w.Snapshot().Model)

	require.NoError(t, os.WriteFile(path, []byte(`{"model":"second"}`), 0o600))

	require.Eventually(t, func() bool {
		got, n, _ := rec.last()
		return n > 0 && got.Model == "second"
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "second", w.Snapshot().Model)
	assert.GreaterOrEqual(t, w.ReloadCount(), uint32(1))
}

func TestWatcher_PicksUpCreatedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "electron-settings.json")

	rec := &reloadRecorder{}
	w, err := NewWatcher(NewSource(path), rec.record, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, DefaultModel, w.Snapshot().Model)

	require.NoError(t, os.WriteFile(path, []byte(`{"model":"created"}`), 0o600))

	require.Eventually(t, func() bool {
		got, n, _ := rec.last()
		return n > 0 && got.Model == "created"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_ReportsCorruptRewrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "electron-settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"model":"good"}`), 0o600))

	rec := &reloadRecorder{}
	w, err := NewWatcher(NewSource(path), rec.record, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{"model":`), 0o600))

	require.Eventually(t, func() bool {
		_, _, errs := rec.last()
		return errs > 0
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "good", w.Snapshot().Model)
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "electron-settings.json")

	rec := &reloadRecorder{}
	w, err := NewWatcher(NewSource(path), rec.record, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600))
	time.Sleep(100 * time.Millisecond)

	assert.Zero(t, w.ReloadCount())
}

func TestNewWatcher_RequiresPath(t *testing.T) {
	_, err := NewWatcher(NewSource(""), func(Settings, error) {})
	assert.Error(t, err)
}

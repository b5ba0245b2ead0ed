package workflow

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veridex-io/mailguard/internal/runlog"
)

func newTestRunStore(t *testing.T) *runlog.Store {
	t.Helper()
	store, err := runlog.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

package trigger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex-io/mailguard/internal/runlog"
	"github.com/veridex-io/mailguard/internal/testutil"
)

func TestSchedulerRegister(t *testing.T) {
	s := NewScheduler()
	require.Equal(t, 0, s.Entries())

	err := s.Register("digest", "0 7 * * *", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())

	err = s.Register("broken", "not a cron spec", func(ctx context.Context) error { return nil })
	assert.Error(t, err)
	assert.Equal(t, 1, s.Entries())
}

func TestDigestJob(t *testing.T) {
	runs, err := runlog.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer runs.Close()

	for i, verdict := range []string{"scam", "scam", "not_scam"} {
		l := runlog.New(string(rune('a' + i)))
		artifact := l.Complete("fast_scam", verdict, nil)
		require.NoError(t, runs.Save(context.Background(), artifact))
	}

	invoker := testutil.NewScriptedInvoker(nil)
	job := NewDigestJob(runs, invoker)
	require.NoError(t, job(context.Background()))

	calls := invoker.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "gmail-tools", calls[0].Server)
	assert.Equal(t, "send_report_to_drive", calls[0].Tool)

	report, ok := calls[0].Args["report_data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 2, report["scam"])
	assert.Equal(t, 1, report["not_scam"])
	assert.Equal(t, 0, report["suspicious"])
}

func TestDigestJobDeliveryFailure(t *testing.T) {
	runs, err := runlog.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer runs.Close()

	invoker := testutil.NewScriptedInvoker(map[string]testutil.Outcome{
		"gmail-tools.send_report_to_drive": {Err: assert.AnError},
	})
	job := NewDigestJob(runs, invoker)
	err = job(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivering digest")
}

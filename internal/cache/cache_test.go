package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/selfassess/internal/answerkey"
)

type countingLoader struct {
	calls int
	data  *answerkey.StorageData
	err   error
}

func (l *countingLoader) load(_ context.Context, _ string) (*answerkey.StorageData, error) {
	l.calls++
	return l.data, l.err
}

func sampleData() *answerkey.StorageData {
	d := answerkey.NewStorageData()
	d.Set("onboarding^Company name?^company_name", "Acme")
	d.Set("AC@Do you limit access?@AC.L1-3.1.1", "Yes")
	return d
}

func openTestCache(t *testing.T, l *countingLoader) *Cache {
	t.Helper()
	c, err := OpenInMemory(l.load, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFetchAssessmentData_MissThenHit(t *testing.T) {
	ctx := context.Background()
	l := &countingLoader{data: sampleData()}
	c := openTestCache(t, l)

	first, err := c.FetchAssessmentData(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, l.calls)
	assert.Equal(t, sampleData().Keys(), first.Keys())

	second, err := c.FetchAssessmentData(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, l.calls, "hit must not reload")
	assert.Equal(t, first.Keys(), second.Keys())
	v, _ := second.Get("AC@Do you limit access?@AC.L1-3.1.1")
	assert.Equal(t, "Yes", v)
}

func TestFetchAssessmentData_KeysAreScopedPerAssessment(t *testing.T) {
	ctx := context.Background()
	l := &countingLoader{data: sampleData()}
	c := openTestCache(t, l)

	_, err := c.FetchAssessmentData(ctx, "a1")
	require.NoError(t, err)
	_, err = c.FetchAssessmentData(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, 2, l.calls)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	l := &countingLoader{data: sampleData()}
	c := openTestCache(t, l)

	_, err := c.FetchAssessmentData(ctx, "a1")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate("a1"))

	l.data = answerkey.NewStorageData()
	l.data.Set("AC@Q@a", "No")
	got, err := c.FetchAssessmentData(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, l.calls)
	assert.Equal(t, []string{"AC@Q@a"}, got.Keys())

	assert.NoError(t, c.Invalidate("never-cached"))
}

func TestFetchAssessmentData_LoaderError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("bucket unavailable")
	l := &countingLoader{err: boom}
	c := openTestCache(t, l)

	_, err := c.FetchAssessmentData(ctx, "a1")
	assert.ErrorIs(t, err, boom)

	l.err = nil
	l.data = sampleData()
	_, err = c.FetchAssessmentData(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, l.calls, "errors must not be cached")
}

func TestFetchAssessmentData_NilDataNotCached(t *testing.T) {
	ctx := context.Background()
	l := &countingLoader{}
	c := openTestCache(t, l)

	got, err := c.FetchAssessmentData(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, _ = c.FetchAssessmentData(ctx, "a1")
	assert.Equal(t, 2, l.calls)
}

func TestFetchAssessmentData_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := openTestCache(t, &countingLoader{data: sampleData()})

	_, err := c.FetchAssessmentData(ctx, "a1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen_PersistentRequiresDir(t *testing.T) {
	_, err := Open(Config{}, (&countingLoader{}).load, nil)
	assert.Error(t, err)
}

func TestOpen_Persistent(t *testing.T) {
	dir := t.TempDir()
	l := &countingLoader{data: sampleData()}

	c, err := Open(Config{Dir: dir}, l.load, zap.NewNop())
	require.NoError(t, err)
	_, err = c.FetchAssessmentData(context.Background(), "a1")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(Config{Dir: dir}, l.load, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()
	_, err = c.FetchAssessmentData(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, l.calls, "entry must survive reopen")
}

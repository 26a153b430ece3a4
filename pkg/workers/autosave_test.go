package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cbodonnell/scoreboard/pkg/board"
	"github.com/cbodonnell/scoreboard/pkg/facet"
	"github.com/cbodonnell/scoreboard/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSaver struct {
	mock.Mock
	saves atomic.Int32
}

func (m *mockSaver) SaveMatch(ctx context.Context, mt *registry.Match) error {
	args := m.Called(ctx, mt)
	m.saves.Add(1)
	return args.Error(0)
}

var score = facet.Int("score", 0)

func newTestMatch() *registry.Match {
	return &registry.Match{
		ID:    "m1",
		Board: board.New(facet.NewGroup(score), nil),
	}
}

func startWorker(t *testing.T, w *AutosaveWorker) (cancel func()) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	return func() {
		cancelCtx()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("autosave worker did not stop")
		}
	}
}

func TestAutosaveWorker_CollapsesBursts(t *testing.T) {
	m := newTestMatch()
	saver := &mockSaver{}
	saver.On("SaveMatch", mock.Anything, m).Return(nil)

	w := NewAutosaveWorker(NewAutosaveWorkerOptions{Match: m, Saver: saver, QuietPeriod: 50 * time.Millisecond})
	stop := startWorker(t, w)
	defer stop()

	id := m.Board.Create()
	for i := 0; i < 10; i++ {
		require.NoError(t, board.Update(m.Board, id, score, func(v *int) { *v++ }))
	}

	require.Eventually(t, func() bool { return saver.saves.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), saver.saves.Load())
	assert.False(t, w.Pending())

	require.NoError(t, board.Set(m.Board, id, score, 0))
	require.Eventually(t, func() bool { return saver.saves.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestAutosaveWorker_Flush(t *testing.T) {
	m := newTestMatch()
	saver := &mockSaver{}
	saver.On("SaveMatch", mock.Anything, m).Return(nil)

	w := NewAutosaveWorker(NewAutosaveWorkerOptions{Match: m, Saver: saver, QuietPeriod: time.Hour})

	require.NoError(t, w.Flush(context.Background()))
	saver.AssertNotCalled(t, "SaveMatch", mock.Anything, mock.Anything)

	m.Board.Create()
	assert.True(t, w.Pending())
	require.NoError(t, w.Flush(context.Background()))
	assert.False(t, w.Pending())
	saver.AssertNumberOfCalls(t, "SaveMatch", 1)
}

func TestAutosaveWorker_FailedSaveStaysPending(t *testing.T) {
	m := newTestMatch()
	saver := &mockSaver{}
	saver.On("SaveMatch", mock.Anything, m).Return(errors.New("disk full")).Once()
	saver.On("SaveMatch", mock.Anything, m).Return(nil)

	w := NewAutosaveWorker(NewAutosaveWorkerOptions{Match: m, Saver: saver, QuietPeriod: time.Hour})
	m.Board.Create()

	assert.Error(t, w.Flush(context.Background()))
	assert.True(t, w.Pending())
	require.NoError(t, w.Flush(context.Background()))
	assert.False(t, w.Pending())
}

func TestAutosaveWorker_CancelDropsPendingChanges(t *testing.T) {
	m := newTestMatch()
	saver := &mockSaver{}

	w := NewAutosaveWorker(NewAutosaveWorkerOptions{Match: m, Saver: saver, QuietPeriod: time.Hour})
	stop := startWorker(t, w)

	m.Board.Create()
	stop()

	saver.AssertNotCalled(t, "SaveMatch", mock.Anything, mock.Anything)
	assert.True(t, w.Pending())
	assert.Equal(t, 0, m.Board.Events().PlayerAdded.Len())
	assert.Equal(t, 0, m.Board.Events().FacetUpdated.Len())
}

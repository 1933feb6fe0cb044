package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yaffw/watchstore/src/internal/adapters/memory"
	"github.com/yaffw/watchstore/src/internal/domain"
	"github.com/yaffw/watchstore/src/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, clock *fakeClock) *store.Store {
	t.Helper()
	var opts []store.Option
	if clock != nil {
		opts = append(opts, store.WithClock(clock.Now))
	}
	s := store.New(memory.NewBlobStore(), memory.NewSampleCatalog(0), opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, s.Close(ctx))
	})
	return s
}

func video(id string) domain.Video {
	return domain.Video{ID: id, Title: "Video " + id}
}

func TestPlaybackSession_RecordsProgressOnlyWhenLive(t *testing.T) {
	s := newTestStore(t, nil)
	session := NewPlaybackSession(s, video("1"), zerolog.Nop())
	session.OnLoad(100)

	assert.False(t, session.OnProgress(10), "tick before Play is ignored")
	_, ok := s.GetProgress("1")
	assert.False(t, ok)

	session.Play()
	assert.True(t, session.IsLive())
	assert.Equal(t, "1", s.CurrentlyPlayingID())

	assert.True(t, session.OnProgress(30))
	p, ok := s.GetProgress("1")
	require.True(t, ok)
	assert.Equal(t, 30.0, p.CurrentTime)
	assert.Equal(t, 100.0, p.Duration)
	assert.False(t, s.IsVideoWatched("1"))
}

func TestPlaybackSession_MarksWatchedAtThreshold(t *testing.T) {
	s := newTestStore(t, nil)
	session := NewPlaybackSession(s, video("1"), zerolog.Nop())
	session.OnLoad(100)
	session.Play()

	session.OnProgress(89)
	assert.False(t, s.IsVideoWatched("1"))

	session.OnProgress(90)
	assert.True(t, s.IsVideoWatched("1"))
	first := s.WatchedVideos()[0].WatchedAt

	session.OnProgress(95)
	require.Len(t, s.WatchedVideos(), 1)
	assert.Equal(t, first, s.WatchedVideos()[0].WatchedAt)
}

func TestPlaybackSession_UnknownDurationNeverMarksWatched(t *testing.T) {
	s := newTestStore(t, nil)
	session := NewPlaybackSession(s, video("1"), zerolog.Nop())
	session.Play()

	session.OnProgress(5)
	assert.False(t, s.IsVideoWatched("1"))
	_, ok := s.GetProgress("1")
	assert.True(t, ok)
}

func TestPlaybackSession_AnotherSessionTakesOver(t *testing.T) {
	s := newTestStore(t, nil)
	a := NewPlaybackSession(s, video("1"), zerolog.Nop())
	b := NewPlaybackSession(s, video("2"), zerolog.Nop())
	a.OnLoad(100)
	b.OnLoad(100)

	a.Play()
	b.Play()

	assert.False(t, a.IsLive())
	assert.True(t, b.IsLive())
	assert.False(t, a.OnProgress(50))
	_, ok := s.GetProgress("1")
	assert.False(t, ok)

	a.OnEnd()
	assert.Equal(t, "2", s.CurrentlyPlayingID(), "ending a stale session keeps the other marker")
}

func TestPlaybackSession_EndAndReplay(t *testing.T) {
	s := newTestStore(t, nil)
	session := NewPlaybackSession(s, video("1"), zerolog.Nop())
	session.OnLoad(100)

	assert.False(t, session.Play())
	session.OnProgress(99)
	session.OnEnd()

	assert.True(t, session.Ended())
	assert.False(t, session.IsLive())
	assert.Empty(t, s.CurrentlyPlayingID())

	assert.True(t, session.Play(), "replaying an ended video restarts from 0")
	assert.False(t, session.Ended())
}

func TestPlaybackSession_ResumesCompletedState(t *testing.T) {
	s := newTestStore(t, nil)
	s.UpdateProgress("1", 95, 100)

	session := NewPlaybackSession(s, video("1"), zerolog.Nop())
	assert.True(t, session.Ended())

	session.Play()
	assert.True(t, session.OnProgress(96), "duration is taken from stored progress")
	p, _ := s.GetProgress("1")
	assert.Equal(t, 100.0, p.Duration)
}

func TestPlaybackSession_ZeroDurationMarkIsNotEnded(t *testing.T) {
	s := newTestStore(t, nil)
	first := NewPlaybackSession(s, video("7"), zerolog.Nop())
	first.Play()
	first.OnProgress(3)

	p, ok := s.GetProgress("7")
	require.True(t, ok)
	require.Zero(t, p.Duration)

	next := NewPlaybackSession(s, video("7"), zerolog.Nop())
	assert.False(t, next.Ended())
	assert.False(t, next.Play(), "unknown duration never counts as ended")
}

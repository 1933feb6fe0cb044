package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaffw/watchstore/src/internal/adapters/memory"
	"github.com/yaffw/watchstore/src/internal/domain"
	"github.com/yaffw/watchstore/src/internal/store"
)

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

type testEnv struct {
	store   *store.Store
	clock   *fakeClock
	handler http.Handler
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	var n atomic.Int64
	st := store.New(memory.NewBlobStore(), memory.NewSampleCatalog(0),
		store.WithClock(clock.Now),
		store.WithIDGenerator(func() string { return fmt.Sprintf("c%d", n.Add(1)) }),
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, st.Close(ctx))
	})
	st.FetchVideos(context.Background())

	return &testEnv{store: st, clock: clock, handler: New(st, opts...).Handler()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCatalog(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[catalogResponse](t, rec)
	assert.Equal(t, "content", resp.Phase)
	assert.Len(t, resp.Videos, 6)

	rec = env.do(t, http.MethodPost, "/api/v1/videos/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "content", decode[catalogResponse](t, rec).Phase)
}

func TestListVideos_Filter(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/videos/1/watched", nil).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/videos/2/progress",
		progressRequest{CurrentTime: 50, Duration: 180}).Code)

	rec := env.do(t, http.MethodGet, "/api/v1/videos?filter=in_progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[listVideosResponse](t, rec)
	require.Len(t, resp.Videos, 1)
	assert.Equal(t, "2", resp.Videos[0].ID)
	require.NotNil(t, resp.Videos[0].Progress)
	assert.Equal(t, 50.0, resp.Videos[0].Progress.CurrentTime)
	assert.Equal(t, "3:00", resp.Videos[0].DurationLabel)
	assert.Equal(t, store.FilterCounts{All: 6, Watched: 1, InProgress: 1, Unwatched: 4}, resp.Counts)

	resp = decode[listVideosResponse](t, env.do(t, http.MethodGet, "/api/v1/videos?filter=watched", nil))
	require.Len(t, resp.Videos, 1)
	assert.True(t, resp.Videos[0].Watched)

	resp = decode[listVideosResponse](t, env.do(t, http.MethodGet, "/api/v1/videos", nil))
	assert.Equal(t, domain.FilterAll, resp.Filter)
	assert.Len(t, resp.Videos, 6)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/videos?filter=bogus", nil).Code)
}

func TestWatched_MarkAndUnmark(t *testing.T) {
	env := newTestEnv(t)

	rating := 4
	rec := env.do(t, http.MethodPost, "/api/v1/videos/3/watched", markWatchedRequest{Rating: &rating})
	require.Equal(t, http.StatusOK, rec.Code)
	mark := decode[domain.WatchedMark](t, rec)
	require.NotNil(t, mark.Rating)
	assert.Equal(t, 4, *mark.Rating)

	bad := 9
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/v1/videos/3/watched", markWatchedRequest{Rating: &bad}).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/videos/3/watched", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/v1/videos/3/watched", nil).Code)
	assert.False(t, env.store.IsVideoWatched("3"))
}

func TestProgress(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/videos/4/progress", nil).Code)

	rec := env.do(t, http.MethodPost, "/api/v1/videos/4/progress", progressRequest{CurrentTime: 230, Duration: 240})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[domain.ProgressMark](t, rec).IsCompleted)

	rec = env.do(t, http.MethodGet, "/api/v1/videos/4/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 230.0, decode[domain.ProgressMark](t, rec).CurrentTime)
}

func TestComments_AddListEditDelete(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/videos/1/comments", commentRequest{Text: "  first  "})
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decode[domain.Comment](t, rec)
	assert.Equal(t, "first", first.Text)
	assert.Equal(t, domain.LocalAuthor, first.Author)

	env.clock.Advance(2 * time.Minute)
	second := decode[domain.Comment](t, env.do(t, http.MethodPost, "/api/v1/videos/1/comments", commentRequest{Text: "second"}))

	thread := decode[[]store.ThreadEntry](t, env.do(t, http.MethodGet, "/api/v1/videos/1/comments", nil))
	require.Len(t, thread, 2)
	assert.Equal(t, second.ID, thread[0].ID)
	assert.True(t, thread[0].CanEdit)
	assert.Equal(t, "Just now", thread[0].CreatedAtLabel)
	assert.False(t, thread[1].CanEdit, "only the latest comment is editable")
	assert.Equal(t, "2 minutes ago", thread[1].CreatedAtLabel)

	assert.Equal(t, http.StatusForbidden,
		env.do(t, http.MethodPatch, "/api/v1/comments/"+first.ID, commentRequest{Text: "edit"}).Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/comments/"+second.ID, commentRequest{Text: "edited"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited", decode[domain.Comment](t, rec).Text)

	assert.Equal(t, http.StatusNotFound,
		env.do(t, http.MethodPatch, "/api/v1/comments/missing", commentRequest{Text: "x"}).Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/comments/"+second.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/v1/comments/"+second.ID, nil).Code)
	assert.Len(t, env.store.GetCommentsForVideo("1"), 1)
}

func TestComments_EditWindowExpires(t *testing.T) {
	env := newTestEnv(t)

	c := decode[domain.Comment](t, env.do(t, http.MethodPost, "/api/v1/videos/2/comments", commentRequest{Text: "hi"}))
	env.clock.Advance(61 * time.Minute)

	assert.Equal(t, http.StatusForbidden,
		env.do(t, http.MethodPatch, "/api/v1/comments/"+c.ID, commentRequest{Text: "late"}).Code)
}

func TestComments_Validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/videos/1/comments", commentRequest{Text: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "empty")

	long := bytes.Repeat([]byte("a"), 501)
	assert.Equal(t, http.StatusBadRequest,
		env.do(t, http.MethodPost, "/api/v1/videos/1/comments", commentRequest{Text: string(long)}).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/1/comments", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, env.store.GetCommentsForVideo("1"))
}

func TestPlaying(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/playing", playingResponse{VideoID: "5"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", env.store.CurrentlyPlayingID())

	assert.Equal(t, "5", decode[playingResponse](t, env.do(t, http.MethodGet, "/api/v1/playing", nil)).VideoID)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/v1/playing", nil).Code)
	assert.Empty(t, env.store.CurrentlyPlayingID())
}

func TestPlaybackSessionFlow(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/v1/videos/nope/play", nil).Code)

	rec := env.do(t, http.MethodPost, "/api/v1/videos/1/play", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[playResponse](t, rec).Restart)
	assert.Equal(t, "1", env.store.CurrentlyPlayingID())

	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/v1/videos/1/playback/load", loadRequest{Duration: 200}).Code)

	rec = env.do(t, http.MethodPost, "/api/v1/videos/1/playback/progress", tickRequest{CurrentTime: 185})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[tickResponse](t, rec).Live)
	assert.True(t, env.store.IsVideoWatched("1"))

	// Another video takes over; ticks from the first are ignored.
	env.do(t, http.MethodPost, "/api/v1/videos/2/play", nil)
	rec = env.do(t, http.MethodPost, "/api/v1/videos/1/playback/progress", tickRequest{CurrentTime: 190})
	assert.False(t, decode[tickResponse](t, rec).Live)

	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/api/v1/videos/2/playback/end", nil).Code)
	assert.Empty(t, env.store.CurrentlyPlayingID())
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	for _, id := range []string{"1", "2", "3"} {
		env.store.MarkAsWatched(id, nil)
	}
	env.store.AddComment("1", "nice", domain.LocalAuthor)

	resp := decode[profileResponse](t, env.do(t, http.MethodGet, "/api/v1/profile", nil))
	assert.Equal(t, domain.LocalUser, resp.User)
	assert.Equal(t, store.ProfileStats{
		TotalVideos:    6,
		WatchedCount:   3,
		TotalComments:  1,
		CompletionRate: 50,
	}, resp.Stats)
}

func TestMetricsAndHealth(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", nil).Code)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "watchstore_catalog_fetch_total")
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, WithRateLimit(2))

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/playing", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/playing", nil).Code)

	rec := env.do(t, http.MethodGet, "/api/v1/playing", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

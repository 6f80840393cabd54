package flickr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/flickgrid/internal/adapter"
	"github.com/mmcdole/flickgrid/internal/domain"
)

type result struct {
	data []byte
	err  error
}

// capture returns a completion that forwards to a buffered channel
func capture() (domain.Completion, <-chan result) {
	ch := make(chan result, 1)
	return func(data []byte, err error) {
		ch <- result{data: data, err: err}
	}, ch
}

func wait(t *testing.T, ch <-chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("completion was not called")
		return result{}
	}
}

func newTestClient(t *testing.T, baseURL string, opts Options) *Client {
	t.Helper()
	opts.BaseURL = baseURL
	if opts.APIKey == "" {
		opts.APIKey = "test-key"
	}
	return NewClient(opts, adapter.NullLogger())
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestClient_SearchURL(t *testing.T) {
	c := NewClient(Options{APIKey: "k3y"}, adapter.NullLogger())

	u, err := url.Parse(c.SearchURL("cats & dogs"))
	require.NoError(t, err)

	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "api.flickr.com", u.Host)
	assert.Equal(t, "/services/rest/", u.Path)

	q := u.Query()
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "1", q.Get("nojsoncallback"))
	assert.Equal(t, "k3y", q.Get("api_key"))
	assert.Equal(t, "flickr.photos.search", q.Get("method"))
	assert.Equal(t, "tags,media,url_s,o_dims", q.Get("extras"))
	assert.Equal(t, "cats & dogs", q.Get("tags"))
}

func TestClient_SearchByTag(t *testing.T) {
	body := `{"photos":{"photo":[]}}`
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/", r.URL.Path)
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	done, ch := capture()
	handle := c.SearchByTag(context.Background(), "cats", done)

	assert.Equal(t, domain.RequestKindSearch, handle.Kind())
	assert.Equal(t, "cats", handle.Target())

	r := wait(t, ch)
	require.NoError(t, r.err)
	assert.Equal(t, body, string(r.data))
	assert.Equal(t, "cats", gotQuery.Get("tags"))
	assert.Equal(t, "test-key", gotQuery.Get("api_key"))

	<-handle.Done()
	assert.Equal(t, domain.RequestCompleted, handle.State())
}

func TestClient_FetchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.jpg", r.URL.Path)
		_, _ = w.Write([]byte{0xFF, 0xD8, 0xFF})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	done, ch := capture()
	handle := c.FetchImage(context.Background(), mustURL(t, srv.URL+"/1.jpg"), done)
	assert.Equal(t, domain.RequestKindImage, handle.Kind())

	r := wait(t, ch)
	require.NoError(t, r.err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, r.data)
	<-handle.Done()
	assert.Equal(t, domain.RequestCompleted, handle.State())
}

func TestClient_Non2xxIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"photos":{"photo":[]}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	done, ch := capture()
	handle := c.SearchByTag(context.Background(), "cats", done)

	r := wait(t, ch)
	require.Error(t, r.err)
	assert.Nil(t, r.data)
	assert.True(t, domain.IsNetworkError(r.err))
	assert.Equal(t, platformerrors.CodeNetwork, platformerrors.GetCode(r.err))
	assert.Contains(t, r.err.Error(), "503")

	<-handle.Done()
	assert.Equal(t, domain.RequestFailed, handle.State())
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c := newTestClient(t, baseURL, Options{})
	done, ch := capture()
	c.SearchByTag(context.Background(), "cats", done)

	r := wait(t, ch)
	require.Error(t, r.err)
	assert.True(t, domain.IsNetworkError(r.err))
	assert.False(t, domain.IsCancelled(r.err))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, Options{Timeout: 50 * time.Millisecond})
	done, ch := capture()
	c.SearchByTag(context.Background(), "slow", done)

	r := wait(t, ch)
	require.Error(t, r.err)
	assert.Equal(t, platformerrors.CodeTimeout, platformerrors.GetCode(r.err))
	assert.True(t, domain.IsNetworkError(r.err))
}

func TestClient_MissingAPIKey(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL}, adapter.NullLogger())
	done, ch := capture()
	c.SearchByTag(context.Background(), "cats", done)

	r := wait(t, ch)
	assert.ErrorIs(t, r.err, domain.ErrMissingAPIKey)
	assert.Zero(t, hits.Load())
}

func TestClient_FetchImageWithoutURL(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", Options{})
	done, ch := capture()
	handle := c.FetchImage(context.Background(), nil, done)

	r := wait(t, ch)
	require.Error(t, r.err)
	assert.Equal(t, platformerrors.CodeInvalidInput, platformerrors.GetCode(r.err))
	<-handle.Done()
	assert.Equal(t, domain.RequestFailed, handle.State())
}

func TestClient_CancelRunning(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{})
	done, ch := capture()
	handle := c.SearchByTag(context.Background(), "cats", done)

	<-started
	handle.Cancel()
	assert.Equal(t, domain.RequestCancelled, handle.State())
	assert.True(t, handle.CancelRequested())

	r := wait(t, ch)
	assert.Nil(t, r.data)
	assert.ErrorIs(t, r.err, domain.ErrRequestCancelled)

	// Completion arrives once; state never leaves Cancelled
	select {
	case extra := <-ch:
		t.Fatalf("unexpected second completion: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, domain.RequestCancelled, handle.State())
}

func TestClient_ParentContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, srv.URL, Options{})
	done, ch := capture()
	c.SearchByTag(ctx, "cats", done)
	cancel()

	r := wait(t, ch)
	assert.True(t, domain.IsCancelled(r.err))
}

func TestClient_ImageConcurrencyLimit(t *testing.T) {
	var active, peak atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		active.Add(-1)
		_, _ = w.Write([]byte("img"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{MaxConcurrentImages: 2})

	const total = 5
	results := make(chan result, total)
	for i := 0; i < total; i++ {
		c.FetchImage(context.Background(), mustURL(t, srv.URL+"/img.jpg"), func(data []byte, err error) {
			results <- result{data: data, err: err}
		})
	}

	assert.Eventually(t, func() bool { return active.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	close(release)

	for i := 0; i < total; i++ {
		select {
		case r := <-results:
			require.NoError(t, r.err)
		case <-time.After(5 * time.Second):
			t.Fatal("image fetch did not complete")
		}
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestClient_CancelWhileQueued(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, Options{MaxConcurrentImages: 1})

	first, firstCh := capture()
	c.FetchImage(context.Background(), mustURL(t, srv.URL+"/a.jpg"), first)
	assert.Eventually(t, func() bool { return hits.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	second, secondCh := capture()
	queued := c.FetchImage(context.Background(), mustURL(t, srv.URL+"/b.jpg"), second)
	queued.Cancel()

	r := wait(t, secondCh)
	assert.ErrorIs(t, r.err, domain.ErrRequestCancelled)

	close(release)
	wait(t, firstCh)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRedact(t *testing.T) {
	out := redact("https://api.flickr.com/services/rest/?api_key=secret&tags=cats")
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "tags=cats")
}

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/flickgrid/internal/domain"
	"github.com/mmcdole/flickgrid/internal/flickr"
	"github.com/mmcdole/flickgrid/internal/store"
)

// Session coordinates tag searches, per-item image loads and the result
// cache for one browsing session.
//
// Every method must be called on the owning context, and every fetch
// completion is posted back to it through the Executor before any state is
// touched. A completion is applied only if its handle is still the current
// owner for that search or item and was never cancelled.
type Session struct {
	client   domain.FetchClient
	cache    *store.ResultCache
	exec     domain.Executor
	listener domain.SessionListener
	logger   *slog.Logger
	ctx      context.Context
	parse    func([]byte) ([]domain.ResultItem, error)

	keepResultsOnFailure bool

	state   domain.SessionState
	tag     string
	items   []domain.ResultItem
	index   *FilterIndex
	search  domain.RequestHandle
	images  map[string]domain.RequestHandle
	visible map[string]bool
}

// Option configures a Session
type Option func(*Session)

// WithListener sets the receiver for session events
func WithListener(l domain.SessionListener) Option {
	return func(s *Session) {
		if l != nil {
			s.listener = l
		}
	}
}

// WithLogger sets the session logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithContext sets the parent context for every request the session issues
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// WithKeepResultsOnFailure keeps the previous results on screen when a
// search fails instead of clearing the grid.
func WithKeepResultsOnFailure(keep bool) Option {
	return func(s *Session) {
		s.keepResultsOnFailure = keep
	}
}

// NewSession creates a session over client and cache, confined to exec
func NewSession(client domain.FetchClient, cache *store.ResultCache, exec domain.Executor, opts ...Option) *Session {
	if cache == nil {
		cache = store.NewResultCache()
	}
	s := &Session{
		client:   client,
		cache:    cache,
		exec:     exec,
		listener: domain.NoOpListener{},
		logger:   slog.Default(),
		ctx:      context.Background(),
		parse:    flickr.ParseSearchResponse,
		index:    NewFilterIndex(nil),
		images:   make(map[string]domain.RequestHandle),
		visible:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// === Search ===

// Search cancels any in-flight search and starts a new one for tag.
// A blank tag clears the result list; favorites are kept either way.
func (s *Session) Search(tag string) {
	s.cancelSearch()

	if strings.TrimSpace(tag) == "" {
		s.logger.Debug("search cleared")
		s.tag = ""
		s.discardResults()
		s.setItems("", nil)
		return
	}

	s.tag = tag
	s.state = domain.SessionSearching
	s.logger.Debug("searching", "tag", tag)

	var handle domain.RequestHandle
	handle = s.client.SearchByTag(s.ctx, tag, func(data []byte, err error) {
		s.exec.Post(func() { s.finishSearch(handle, tag, data, err) })
	})
	s.search = handle
}

// Install replaces the results without a network round trip (startup fixture)
func (s *Session) Install(tag string, items []domain.ResultItem) {
	s.cancelSearch()
	s.tag = tag
	s.installResults(tag, items)
}

func (s *Session) finishSearch(handle domain.RequestHandle, tag string, data []byte, err error) {
	if s.search != handle || handle.CancelRequested() {
		s.logger.Debug("dropping stale search response", "tag", tag)
		return
	}
	s.search = nil
	s.state = domain.SessionIdle

	if domain.IsCancelled(err) {
		s.logger.Debug("search cancelled", "tag", tag)
		return
	}
	if err != nil {
		s.failSearch(tag, err)
		return
	}

	items, err := s.parse(data)
	if err != nil {
		s.failSearch(tag, err)
		return
	}

	s.logger.Info("search complete", "tag", tag, "results", len(items))
	s.installResults(tag, items)
}

func (s *Session) failSearch(tag string, err error) {
	s.logger.Warn("search failed", "tag", tag, "error", err)
	if !s.keepResultsOnFailure {
		s.discardResults()
		s.setItems(tag, nil)
	}
	s.listener.OnSearchFailed(tag, err)
}

func (s *Session) installResults(tag string, items []domain.ResultItem) {
	s.discardResults()
	s.setItems(tag, items)
}

// discardResults drops everything derived from the current result list
func (s *Session) discardResults() {
	s.cancelAllImages()
	s.cache.ResetForNewSearch()
}

func (s *Session) setItems(tag string, items []domain.ResultItem) {
	s.items = items
	s.index = NewFilterIndex(items)
	s.visible = make(map[string]bool)
	s.listener.OnItemsChanged(tag, items)
}

func (s *Session) cancelSearch() {
	if s.search != nil {
		s.search.Cancel()
		s.search = nil
	}
	s.state = domain.SessionIdle
}

// === Images ===

// LoadImage serves an item's image from the cache or starts a fetch for it.
// It returns (nil, true) on a cache hit. A fetch already in flight for the
// item is reused rather than duplicated.
func (s *Session) LoadImage(item domain.ResultItem) (domain.RequestHandle, bool) {
	if _, ok := s.cache.GetImage(item.ID); ok {
		return nil, true
	}
	if handle, ok := s.images[item.ID]; ok && !handle.CancelRequested() {
		return handle, false
	}

	id := item.ID
	var handle domain.RequestHandle
	handle = s.client.FetchImage(s.ctx, item.ImageURL, func(data []byte, err error) {
		s.exec.Post(func() { s.finishImage(id, handle, data, err) })
	})
	s.images[id] = handle
	return handle, false
}

func (s *Session) finishImage(id string, handle domain.RequestHandle, data []byte, err error) {
	if s.images[id] != handle || handle.CancelRequested() {
		return
	}
	delete(s.images, id)

	switch {
	case domain.IsCancelled(err):
		s.logger.Debug("image fetch cancelled", "id", id)
		return
	case err != nil:
		s.logger.Warn("image fetch failed", "id", id, "error", err)
		return
	}

	s.cache.PutImage(id, data)
	s.listener.OnImageLoaded(id, data)
}

// CancelImage cancels the in-flight fetch for id, if any
func (s *Session) CancelImage(id string) {
	if handle, ok := s.images[id]; ok {
		handle.Cancel()
		delete(s.images, id)
	}
}

func (s *Session) cancelAllImages() {
	for id, handle := range s.images {
		handle.Cancel()
		delete(s.images, id)
	}
}

// SetVisible records the items currently on screen. Fetches for items that
// are no longer visible are cancelled and items that just became visible are
// loaded. An item that stays visible is not loaded again, so a failed fetch
// is only retried once the item scrolls away and back.
func (s *Session) SetVisible(items []domain.ResultItem) {
	next := make(map[string]bool, len(items))
	for _, item := range items {
		next[item.ID] = true
	}
	for id := range s.visible {
		if !next[id] {
			s.CancelImage(id)
		}
	}

	prev := s.visible
	s.visible = next
	for _, item := range items {
		if !prev[item.ID] {
			s.LoadImage(item)
		}
	}
}

// Image returns the cached image bytes for id
func (s *Session) Image(id string) ([]byte, bool) {
	return s.cache.GetImage(id)
}

// Loading reports whether a fetch is in flight for id
func (s *Session) Loading(id string) bool {
	_, ok := s.images[id]
	return ok
}

// === Layout ===

// Size returns the memoized display size for item, calling measure on a miss
func (s *Session) Size(item domain.ResultItem, measure func() domain.Size) domain.Size {
	if size, ok := s.cache.GetSize(item.ID); ok {
		return size
	}
	size := measure()
	s.cache.PutSize(item.ID, size)
	return size
}

// InvalidateLayout drops memoized sizes after the display geometry changed
func (s *Session) InvalidateLayout() {
	s.cache.ResetSizes()
}

// === Favorites ===

func (s *Session) Favorite(id string) bool {
	return s.cache.GetFavorite(id)
}

func (s *Session) SetFavorite(id string, favorite bool) {
	s.cache.SetFavorite(id, favorite)
}

// ToggleFavorite flips the flag for id and returns the new value
func (s *Session) ToggleFavorite(id string) bool {
	favorite := !s.cache.GetFavorite(id)
	s.cache.SetFavorite(id, favorite)
	return favorite
}

// === Lifecycle ===

// HandleMemoryPressure drops every cache, favorites included
func (s *Session) HandleMemoryPressure() {
	s.logger.Info("memory pressure: resetting caches", "stats", s.cache.Stats())
	s.cancelAllImages()
	s.cache.ResetAll()
	s.visible = make(map[string]bool)
}

// Close cancels every outstanding request
func (s *Session) Close() {
	s.cancelSearch()
	s.cancelAllImages()
}

// === Accessors ===

// Items returns the active result list. Callers must not modify it.
func (s *Session) Items() []domain.ResultItem { return s.items }

// Tag returns the tag of the active or most recent search
func (s *Session) Tag() string { return s.tag }

// State returns whether a search is in flight
func (s *Session) State() domain.SessionState { return s.state }

// InFlight returns the number of image fetches in flight
func (s *Session) InFlight() int { return len(s.images) }

// Stats returns cache occupancy
func (s *Session) Stats() store.Stats { return s.cache.Stats() }

// Filter narrows the active items locally by title or tag
func (s *Session) Filter(query string) []FilterResult {
	return s.index.Filter(query)
}

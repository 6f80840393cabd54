package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mmcdole/flickgrid/internal/dispatch"
	"github.com/mmcdole/flickgrid/internal/domain"
	"github.com/mmcdole/flickgrid/internal/service"
	"github.com/mmcdole/flickgrid/internal/store"
)

// printListener stops the loop once the search settles
type printListener struct {
	loop  *dispatch.Loop
	items []domain.ResultItem
	err   error
}

func (l *printListener) OnItemsChanged(_ string, items []domain.ResultItem) {
	l.items = items
	l.loop.Stop()
}

func (l *printListener) OnImageLoaded(string, []byte) {}

func (l *printListener) OnSearchFailed(_ string, err error) {
	l.err = err
	l.loop.Stop()
}

// runHeadless searches tag without the TUI and prints one line per result
func runHeadless(ctx context.Context, client domain.FetchClient, tag string, w io.Writer, logger *slog.Logger) error {
	loop := dispatch.NewLoop(logger)
	listener := &printListener{loop: loop}
	session := service.NewSession(client, store.NewResultCache(), loop,
		service.WithListener(listener),
		service.WithLogger(logger),
		service.WithContext(ctx),
	)
	defer session.Close()

	loop.Post(func() { session.Search(tag) })
	if err := loop.Run(ctx); err != nil {
		return err
	}
	if listener.err != nil {
		return fmt.Errorf("search %q: %w", tag, listener.err)
	}

	for _, item := range listener.items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", item.ID, item.DisplayTitle(), item.ImageURL)
	}
	return nil
}

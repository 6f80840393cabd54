package flickr

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	platformerrors "github.com/jmgilman/go/errors"

	"github.com/mmcdole/flickgrid/internal/domain"
)

// ParseSearchResponse converts a raw search response into result items in
// document order.
//
// A document that is not JSON, or has no photos.photo array, fails as a
// whole. A record missing id, a usable url_s or an integer height_s is
// skipped and the rest of the batch is kept.
func ParseSearchResponse(data []byte) ([]domain.ResultItem, error) {
	var resp SearchResponse
	if err := decodeStrict(data, &resp); err != nil {
		return nil, malformed(err, "response is not a JSON object")
	}
	if resp.Photos == nil || resp.Photos.Photo == nil {
		return nil, malformed(nil, "response has no photos.photo array")
	}

	items := make([]domain.ResultItem, 0, len(resp.Photos.Photo))
	for _, raw := range resp.Photos.Photo {
		item, ok := mapPhoto(raw)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// mapPhoto converts one raw record. ok is false if the record must be skipped.
func mapPhoto(raw json.RawMessage) (domain.ResultItem, bool) {
	var rec photoRecord
	if err := decodeStrict(raw, &rec); err != nil {
		return domain.ResultItem{}, false
	}

	id, ok := rec.ID.(string)
	if !ok || id == "" {
		return domain.ResultItem{}, false
	}

	rawURL, ok := rec.URLS.(string)
	if !ok || rawURL == "" {
		return domain.ResultItem{}, false
	}
	imageURL, err := url.ParseRequestURI(rawURL)
	if err != nil || !imageURL.IsAbs() {
		return domain.ResultItem{}, false
	}

	height, ok := parseHeight(rec.HeightS)
	if !ok {
		return domain.ResultItem{}, false
	}

	item := domain.ResultItem{
		ID:       id,
		ImageURL: imageURL,
		Height:   height,
	}
	if title, ok := rec.Title.(string); ok {
		item.Title = title
	}
	if tags, ok := rec.Tags.(string); ok {
		item.Tags = strings.Fields(tags)
	}
	return item, true
}

// parseHeight accepts "100" or 100; anything else is rejected
func parseHeight(v any) (int, bool) {
	switch h := v.(type) {
	case string:
		n, err := strconv.Atoi(h)
		if err != nil {
			return 0, false
		}
		return n, true
	case json.Number:
		n, err := strconv.Atoi(h.String())
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// decodeStrict decodes a single JSON value, keeping numbers as json.Number
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

var errTrailingData = errors.New("unexpected data after JSON document")

type parseError struct {
	platformerrors.PlatformError
}

func (e parseError) Is(target error) bool {
	return target == domain.ErrMalformedResponse
}

func malformed(cause error, msg string) error {
	if cause == nil {
		return parseError{platformerrors.New(platformerrors.CodeInvalidInput, msg)}
	}
	return parseError{platformerrors.Wrap(cause, platformerrors.CodeInvalidInput, msg)}
}

package flickr

import "encoding/json"

// SearchResponse is the top-level photos.search document.
// Photo records stay raw so one bad record cannot fail the whole decode.
type SearchResponse struct {
	Photos *PhotoPage `json:"photos"`
	Stat   any        `json:"stat,omitempty"`
	Code   any        `json:"code,omitempty"`
	Msg    any        `json:"message,omitempty"`
}

// PhotoPage is the "photos" object of a search response
type PhotoPage struct {
	Page    any               `json:"page,omitempty"`
	Pages   any               `json:"pages,omitempty"`
	PerPage any               `json:"perpage,omitempty"`
	Total   any               `json:"total,omitempty"`
	Photo   []json.RawMessage `json:"photo"`
}

// photoRecord holds the fields read from one photo record.
// Fields are untyped because the service is inconsistent about
// quoting numbers.
type photoRecord struct {
	ID      any `json:"id"`
	URLS    any `json:"url_s"`
	HeightS any `json:"height_s"`
	Title   any `json:"title"`
	Tags    any `json:"tags"`
}

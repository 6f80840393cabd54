package flickr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/flickgrid/internal/domain"
)

func TestParseSearchResponse_SingleRecord(t *testing.T) {
	data := []byte(`{"photos":{"photo":[{"id":"1","url_s":"https://x/1.jpg","height_s":"100","title":"Cat","tags":"cat pet"}]}}`)

	items, err := ParseSearchResponse(data)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "1", item.ID)
	assert.Equal(t, "https://x/1.jpg", item.ImageURL.String())
	assert.Equal(t, 100, item.Height)
	assert.Equal(t, "Cat", item.Title)
	assert.Equal(t, []string{"cat", "pet"}, item.Tags)
}

func TestParseSearchResponse_KeepsDocumentOrder(t *testing.T) {
	data := []byte(`{"photos":{"photo":[
		{"id":"b","url_s":"https://x/b.jpg","height_s":"10"},
		{"id":"a","url_s":"https://x/a.jpg","height_s":"20"},
		{"id":"c","url_s":"https://x/c.jpg","height_s":"30"}
	]}}`)

	items, err := ParseSearchResponse(data)
	require.NoError(t, err)

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestParseSearchResponse_EmptyPhotoArray(t *testing.T) {
	items, err := ParseSearchResponse([]byte(`{"photos":{"photo":[]},"stat":"ok"}`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParseSearchResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ``},
		{"not json", `<html>rate limited</html>`},
		{"array root", `[1,2,3]`},
		{"missing photos", `{"stat":"fail","code":100,"message":"Invalid API Key"}`},
		{"null photos", `{"photos":null}`},
		{"missing photo array", `{"photos":{"page":1}}`},
		{"photo not array", `{"photos":{"photo":"nope"}}`},
		{"trailing data", `{"photos":{"photo":[]}} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseSearchResponse([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, items)
			assert.True(t, domain.IsParseError(err), "expected parse error, got %v", err)
			assert.False(t, domain.IsNetworkError(err))
		})
	}
}

func TestParseSearchResponse_SkipsInvalidRecords(t *testing.T) {
	data := []byte(`{"photos":{"photo":[
		{"url_s":"https://x/no-id.jpg","height_s":"1"},
		{"id":"","url_s":"https://x/empty-id.jpg","height_s":"1"},
		{"id":42,"url_s":"https://x/numeric-id.jpg","height_s":"1"},
		{"id":"no-url","height_s":"1"},
		{"id":"relative-url","url_s":"/photos/1.jpg","height_s":"1"},
		{"id":"bad-url","url_s":"::not a url","height_s":"1"},
		{"id":"no-height","url_s":"https://x/nh.jpg"},
		{"id":"bad-height","url_s":"https://x/bh.jpg","height_s":"tall"},
		{"id":"float-height","url_s":"https://x/fh.jpg","height_s":10.5},
		{"id":"padded-height","url_s":"https://x/ph.jpg","height_s":" 100"},
		{"id":"trailing-space-height","url_s":"https://x/sp.jpg","height_s":"100 "},
		"not an object",
		{"id":"ok","url_s":"https://x/ok.jpg","height_s":"75"}
	]}}`)

	items, err := ParseSearchResponse(data)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ok", items[0].ID)
}

func TestParseSearchResponse_HeightWithWhitespaceSkipped(t *testing.T) {
	for _, height := range []string{" 100", "100 ", "\t100", "1 00"} {
		data := []byte(`{"photos":{"photo":[{"id":"1","url_s":"https://x/1.jpg","height_s":"` + height + `"}]}}`)
		items, err := ParseSearchResponse(data)
		require.NoError(t, err)
		assert.Empty(t, items, "height %q", height)
	}
}

func TestParseSearchResponse_NumericHeight(t *testing.T) {
	items, err := ParseSearchResponse([]byte(`{"photos":{"photo":[{"id":"1","url_s":"https://x/1.jpg","height_s":240}]}}`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 240, items[0].Height)
}

func TestParseSearchResponse_OptionalFields(t *testing.T) {
	data := []byte(`{"photos":{"photo":[
		{"id":"1","url_s":"https://x/1.jpg","height_s":"100"},
		{"id":"2","url_s":"https://x/2.jpg","height_s":"100","title":"","tags":""},
		{"id":"3","url_s":"https://x/3.jpg","height_s":"100","title":7,"tags":"  spaced   out  "}
	]}}`)

	items, err := ParseSearchResponse(data)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "", items[0].Title)
	assert.Nil(t, items[0].Tags)
	assert.False(t, items[0].HasTags())

	assert.Equal(t, "", items[1].Title)
	assert.Empty(t, items[1].Tags)

	assert.Equal(t, "", items[2].Title)
	assert.Equal(t, []string{"spaced", "out"}, items[2].Tags)
}

func TestParseSearchResponse_IgnoresMetadataTypes(t *testing.T) {
	data := []byte(`{"photos":{"page":"1","pages":3,"perpage":100,"total":"250","photo":[
		{"id":"1","url_s":"https://x/1.jpg","height_s":"100","extra":{"nested":true}}
	]},"stat":"ok"}`)

	items, err := ParseSearchResponse(data)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

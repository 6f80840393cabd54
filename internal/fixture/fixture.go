// Package fixture bundles a sample search response used to populate the
// grid before the first search.
package fixture

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/mmcdole/flickgrid/internal/domain"
	"github.com/mmcdole/flickgrid/internal/flickr"
)

// DefaultTag is the tag the bundled response was captured for
const DefaultTag = "Graphic"

//go:embed welcome-flickr-search.json
var welcome []byte

// Load parses the fixture at path, or the bundled one if path is empty
func Load(path string) ([]domain.ResultItem, error) {
	data := welcome
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture: %w", err)
		}
		data = b
	}
	return flickr.ParseSearchResponse(data)
}

package progress

import (
	"context"
	"sync"

	"github.com/rootyapp/rooty/internal/quiz"
)

// ChallengeThemeName is the display name of the promotional theme the
// daily challenges draw from.
const ChallengeThemeName = "Christmas Special"

type themeLister interface {
	GetThemes(ctx context.Context) ([]quiz.Theme, error)
}

// ThemeCache resolves the challenge theme's numeric id by display name
// once per instance and remembers it, so repeated navigations do not
// repeat the lookup. Lifecycle is the caller's: build one per page/app
// session instead of sharing a module global.
type ThemeCache struct {
	mu     sync.Mutex
	themes themeLister
	name   string
	id     *int64
}

// NewThemeCache builds a cache that resolves the named theme through gw.
func NewThemeCache(gw themeLister, name string) *ThemeCache {
	if name == "" {
		name = ChallengeThemeName
	}
	return &ThemeCache{themes: gw, name: name}
}

// Resolve returns the theme id, fetching the theme list only on the first
// successful call. A missing theme or gateway failure returns (nil, err)
// and leaves the cache cold so a later call can retry.
func (c *ThemeCache) Resolve(ctx context.Context) (*int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.id != nil {
		return c.id, nil
	}

	themes, err := c.themes.GetThemes(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range themes {
		if t.Name == c.name {
			id := t.ID
			c.id = &id
			return c.id, nil
		}
	}
	return nil, nil
}

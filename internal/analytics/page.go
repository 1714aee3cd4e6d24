package analytics

import (
	"strings"

	"github.com/wishwall/wishwall/internal/model"
)

// PageFromPath maps a request path to a tracked page name.
func PageFromPath(path string) string {
	switch {
	case strings.Contains(path, "/wish"):
		return model.PageWish
	case strings.Contains(path, "/admin"):
		return model.PageAdmin
	default:
		return model.PageHome
	}
}

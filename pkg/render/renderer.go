package render

import (
	"context"
)

// Renderer turns a View into bytes for one surface (HTML page, terminal
// text, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options RenderOptions) ([]byte, error)
}

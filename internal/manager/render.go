package manager

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// Renderer produces the off-screen output for a scene whose toolset is loaded.
type Renderer interface {
	Prerender(ctx context.Context, scene types.Scene) ([]byte, error)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(ctx context.Context, scene types.Scene) ([]byte, error)

func (f RenderFunc) Prerender(ctx context.Context, scene types.Scene) ([]byte, error) {
	return f(ctx, scene)
}

// SnapshotRenderer renders a scene as its JSON document after an optional delay.
type SnapshotRenderer struct {
	Delay time.Duration
}

func (r SnapshotRenderer) Prerender(ctx context.Context, scene types.Scene) ([]byte, error) {
	if r.Delay > 0 {
		t := time.NewTimer(r.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return json.Marshal(scene)
}

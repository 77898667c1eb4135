package manager

import (
	"time"

	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// RenderState marks how far a scene has progressed towards display.
type RenderState string

const (
	RenderUnloaded RenderState = "unloaded"
	RenderJSON     RenderState = "json"
	RenderRendered RenderState = "rendered"
	RenderWarm     RenderState = "warm"
)

// memoryWeight is a heuristic footprint per state, in arbitrary units.
var memoryWeight = map[RenderState]int{
	RenderUnloaded: 1,
	RenderJSON:     10,
	RenderRendered: 100,
	RenderWarm:     200,
}

// ScenePerformanceState is one warm cache entry.
type ScenePerformanceState struct {
	SceneID      string
	Type         types.SceneType
	RenderState  RenderState
	LastAccessed time.Time
	WarmUntil    time.Time
	// RenderElement is the pre-rendered output. It is owned by the entry and
	// must be treated as read-only by callers.
	RenderElement []byte

	seq uint64 // insertion order, breaks LastAccessed ties
}

// Status converts the entry into its API representation.
func (s ScenePerformanceState) Status() types.WarmSceneStatus {
	return types.WarmSceneStatus{
		SceneID:       s.SceneID,
		Type:          s.Type,
		RenderState:   string(s.RenderState),
		LastAccessed:  s.LastAccessed.Unix(),
		WarmUntil:     s.WarmUntil.Unix(),
		RenderedBytes: len(s.RenderElement),
	}
}

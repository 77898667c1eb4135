package manager

import (
	"context"

	"github.com/google/uuid"

	"github.com/Imergent-Technology/Protogen-sub001/pkg/types"
)

// WarmSceneAsync kicks off a background warm and returns an operation ID.
// Completion is reported as a "warm_op_done" event carrying the op_id.
func (m *Manager) WarmSceneAsync(scene types.Scene) string {
	op := uuid.NewString()
	go func(opID string) {
		// Detached so the caller's request lifetime does not cancel the warm.
		err := m.WarmScene(context.Background(), scene)
		fields := map[string]any{"op_id": opID}
		if err != nil {
			fields["error"] = err.Error()
		}
		m.emit("warm_op_done", scene.ID, fields)
	}(op)
	return op
}

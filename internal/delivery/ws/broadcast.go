package ws

import (
	"context"
	"encoding/json"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/ports"
)

type stageMsg struct {
	UploadID  string `json:"uploadID"`
	Mode      string `json:"mode"`
	Stage     string `json:"stage"`
	ErrorKind string `json:"errorKind,omitempty"`
}

// Broadcast forwards pipeline stage events to their rooms until ctx ends
// or events is closed.
func Broadcast(ctx context.Context, hub *Hub, events <-chan ports.StageEvent, log *logger.ZapLogger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			payload, err := json.Marshal(stageMsg{
				UploadID:  ev.UploadID.String(),
				Mode:      string(ev.Mode),
				Stage:     string(ev.Stage),
				ErrorKind: ev.ErrorKind,
			})
			if err != nil {
				log.Log(logger.LogEntry{
					Level:   "error",
					Message: "[SEND] marshal failed",
					Error:   err,
				})
				continue
			}

			hub.SendToRoom(ev.RoomID, payload)
		}
	}
}

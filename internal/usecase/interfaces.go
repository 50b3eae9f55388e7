package usecase

import (
	"context"

	"alima/internal/domain/entity"
	ws "alima/internal/infrastructure/websocket"
)

// ProfileCache fronts profile reads. Implementations treat their own
// failures as misses.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*entity.User, bool)
	Set(ctx context.Context, user *entity.User)
	Invalidate(ctx context.Context, userID string)
}

// Broadcaster pushes frames to connected websocket clients.
type Broadcaster interface {
	Broadcast(frame ws.Frame)
	SendToUser(userID string, frame ws.Frame)
}

package redis

import (
	"context"
	"encoding/json"

	"github.com/sharetube/watchparty/internal/repository/room"
)

func (r repo) getNotificationsKey(roomCode string) string {
	return "room:" + roomCode + ":notifications"
}

func (r repo) AddNotification(ctx context.Context, params *room.AddNotificationParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	data, err := json.Marshal(room.Notification{
		Kind:      room.NotificationKindSystem,
		Text:      params.Text,
		CreatedAt: params.CreatedAt,
	})
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if err := r.rc.RPush(ctx, r.getNotificationsKey(params.RoomCode), data).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetNotifications(ctx context.Context, roomCode string) ([]room.Notification, error) {
	r.logger.DebugContext(ctx, "called", "params", map[string]any{
		"room_code": roomCode,
	})
	raw, err := r.rc.LRange(ctx, r.getNotificationsKey(roomCode), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	notifications := make([]room.Notification, 0, len(raw))
	for _, item := range raw {
		var n room.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			r.logger.DebugContext(ctx, "returned", "error", err)
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

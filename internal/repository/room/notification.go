package room

const NotificationKindSystem = "system"

type Notification struct {
	Kind      string `json:"kind"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"created_at"`
}

type AddNotificationParams struct {
	RoomCode  string `json:"room_code"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"created_at"`
}

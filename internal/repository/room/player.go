package room

type Player struct {
	MediaURL  string  `redis:"media_url"`
	MediaKind string  `redis:"media_kind"`
	Position  float64 `redis:"position"`
	Playing   bool    `redis:"playing"`
	LastSync  int64   `redis:"last_sync"`
	Version   int     `redis:"version"`
}

type SetPlayerParams struct {
	RoomCode  string  `json:"room_code"`
	MediaURL  string  `json:"media_url"`
	MediaKind string  `json:"media_kind"`
	Position  float64 `json:"position"`
	Playing   bool    `json:"playing"`
	LastSync  int64   `json:"last_sync"`
	Version   int     `json:"version"`
}

package room

type Room struct {
	Name       string `redis:"name"`
	SecretHash string `redis:"secret_hash"`
	HostId     string `redis:"host_id"`
	CreatedAt  int64  `redis:"created_at"`
}

type SetRoomParams struct {
	RoomCode   string `json:"room_code"`
	Name       string `json:"name"`
	SecretHash string `json:"-"`
	HostId     string `json:"host_id"`
	HostName   string `json:"host_name"`
	CreatedAt  int64  `json:"created_at"`
}

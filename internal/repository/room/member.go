package room

type Member struct {
	DisplayName string `redis:"display_name"`
	Role        string `redis:"role"`
	Approved    bool   `redis:"approved"`
	JoinedAt    int64  `redis:"joined_at"`
}

type SetMemberParams struct {
	RoomCode      string `json:"room_code"`
	ParticipantId string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Role          string `json:"role"`
	Approved      bool   `json:"approved"`
	JoinedAt      int64  `json:"joined_at"`
}

type GetMemberParams struct {
	RoomCode      string `json:"room_code"`
	ParticipantId string `json:"participant_id"`
}

type RemoveMemberParams struct {
	RoomCode      string `json:"room_code"`
	ParticipantId string `json:"participant_id"`
}

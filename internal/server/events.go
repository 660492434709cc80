package server

// EventPayload is the JSON body stored with each activity log entry. Only
// the fields relevant to the event type are set.
type EventPayload struct {
	RoomID      string `json:"room_id,omitempty"`
	JoinCode    string `json:"join_code,omitempty"`
	PlayerID    int    `json:"player_id,omitempty"`
	PlayerName  string `json:"player_name,omitempty"`
	RoundNumber int    `json:"round_number,omitempty"`
	Status      string `json:"status,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	VotedForID  int    `json:"voted_for_id,omitempty"`
	MaxRounds   int    `json:"max_rounds,omitempty"`
	Points      int    `json:"points,omitempty"`
	Winners     []int  `json:"winners,omitempty"`
}

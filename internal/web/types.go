package web

type RoomSummary struct {
	ID       string `json:"id"`
	JoinCode string `json:"join_code"`
	Status   string `json:"status"`
	Players  int    `json:"players"`
}

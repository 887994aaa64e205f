package dto

import "time"

// 大厅和状态接口里展示的房间摘要，不包含任何对局细节
type RoomSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	HostName   string    `json:"hostName"`
	Status     string    `json:"status"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"maxPlayers"`
	CreatedAt  time.Time `json:"createdAt"`
}

const SERVER_STATUS_RUNNING = "running"

type StatusResponse struct {
	Status      string        `json:"status"`
	Connections int           `json:"connections"`
	Rooms       int           `json:"rooms"`
	ActiveRooms []RoomSummary `json:"activeRooms"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

type AvailableRoomsResponse struct {
	Rooms []RoomSummary `json:"rooms"`
}

package state

import (
	"pictoblitz-be/internal/config"
	"pictoblitz-be/internal/service"
)

type AppState struct {
	Cfg     *config.AppConfig
	RoomSvc *service.RoomService
	Hub     *service.ConnectionHub
	Gateway *service.Gateway
}

func NewAppState(
	cfg *config.AppConfig,
	roomSvc *service.RoomService,
	hub *service.ConnectionHub,
) *AppState {
	return &AppState{
		Cfg:     cfg,
		RoomSvc: roomSvc,
		Hub:     hub,
		Gateway: service.NewGateway(roomSvc, hub),
	}
}

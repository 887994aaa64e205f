package main

import (
	"errors"
	nethttp "net/http"

	"pictoblitz-be/internal/api/http"
	"pictoblitz-be/internal/config"
	"pictoblitz-be/internal/logger"
	"pictoblitz-be/internal/service"
	"pictoblitz-be/internal/service/game"
	"pictoblitz-be/internal/state"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel)
	defer zap.L().Sync()

	words := game.DefaultWordBank()
	if cfg.WordsFile != "" {
		var err error
		if words, err = game.LoadWordBank(cfg.WordsFile); err != nil {
			zap.L().Fatal("Failed to load word bank", zap.String("path", cfg.WordsFile), zap.Error(err))
		}
	}
	zap.L().Info("Word bank ready", zap.Int("words", words.Size()), zap.Strings("categories", words.Categories()))

	hub := service.NewConnectionHub(cfg.OutboxSize)

	roomSvc := service.NewRoomService(service.RoomServiceOptions{
		DefaultMaxPlayers: cfg.DefaultMaxPlayers,
		MaxPlayersLimit:   cfg.MaxPlayersLimit,
		DefaultMaxRounds:  cfg.DefaultMaxRounds,
		MaxRoundsLimit:    cfg.MaxRoundsLimit,
		Settings: game.Settings{
			RoundDuration: cfg.RoundDuration,
			GraceDelay:    cfg.GraceDelay,
			MaxMessages:   cfg.MaxMessages,
			MaxSegments:   cfg.MaxSegments,
		},
		Words:            words,
		CompletedRoomTTL: cfg.CompletedRoomTTL,
	}, hub)
	defer roomSvc.Close()

	// 组装应用状态
	appState := state.NewAppState(cfg, roomSvc, hub)

	// 启动服务器
	// iris 自己处理中断信号，优雅关闭时返回 ErrServerClosed
	if err := http.RunServer(appState); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}

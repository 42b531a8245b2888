package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"battleflow-server/internal/agent"
	"battleflow-server/internal/battle"
	"battleflow-server/internal/engine"
	"battleflow-server/internal/infrastructure/storage"
	"battleflow-server/internal/server"
	"battleflow-server/internal/version"
	"battleflow-server/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var replayPath string
	flag.StringVar(&replayPath, "replay", "", "Path to .abhl history file to replay")
	flag.Parse()

	logger.Log.Info("Starting BattleFlow...")
	logger.Log.Info(version.String())

	cfg, err := engine.LoadConfig()
	if err != nil {
		logger.Log.Fatal("Config error:", err)
	}

	historySvc := storage.NewHistoryService(cfg.HistoryDir)

	// РЕЖИМ РЕПЛЕЯ
	if replayPath != "" {
		logger.Log.Info("💿 Mode: History Replay")
		runReplay(historySvc, replayPath)
		return
	}

	// 2. Инициализация ядра с конфигом
	service := engine.NewService(cfg)

	// Демо-бой: герой управляется человеком через WebSocket, маг - ботом
	enc := service.CreateEncounter(
		[]battle.Combatant{
			battle.NewCombatant("hero", "Hero", battle.NewStats(100, 100, 20, 20, 25, 5, 10), true),
			battle.NewCombatant("mage", "Mage", battle.NewStats(60, 60, 40, 40, 15, 3, 8), true),
		},
		[]battle.Combatant{
			battle.NewCombatant("goblin", "Goblin", battle.NewStats(50, 50, 0, 0, 8, 2, 6), false),
			battle.NewCombatant("orc", "Orc", battle.NewStats(80, 80, 0, 0, 12, 4, 4), false),
		},
	)
	logger.Log.WithField("encounter_id", enc.ID).Info("Demo encounter ready, login tokens: hero, mage")

	bot := agent.NewBot("mage", service)
	go bot.Run()

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 3. Запуск сервера
	srv := server.New(service, cfg.Port)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error:", err)
		}
	}()

	<-stop
	logger.Log.Info("Shutting down...")

	// Останавливаем циклы и сохраняем истории всех боев
	service.Shutdown()
	for _, e := range service.Encounters() {
		session := &storage.HistorySession{
			EncounterID: e.ID,
			Timestamp:   time.Now().Unix(),
			Actions:     e.Store.History(),
		}
		if err := historySvc.Save(session); err != nil {
			logger.Log.WithField("encounter_id", e.ID).WithError(err).Error("Failed to save battle history")
		}
	}

	logger.Log.Info("Done.")
}

// runReplay проигрывает сохраненную историю на чистом сторе и
// печатает итоговое состояние боя.
func runReplay(historySvc *storage.HistoryService, path string) {
	session, err := historySvc.Load(path)
	if err != nil {
		logger.Log.Fatal("Failed to load history:", err)
	}

	logger.WithComponent("replay").Infof("Replaying encounter %s: %d actions", session.EncounterID, len(session.Actions))

	store := battle.NewStore()
	store.SetHandler(func(e battle.Effect) {
		logger.WithComponent("replay").WithField("effect_id", e.ID).Debug("Effect")
	})
	<-store.DispatchAll(session.Actions)

	state := store.State()
	logger.WithComponent("replay").Infof("Final phase: %s, turns: %d", state.Phase(), state.TurnCount())
	for _, c := range state.Combatants() {
		logger.WithComponent("replay").Infof("  %s (%s): HP %d/%d", c.Name, c.ID, c.Stats.HP, c.Stats.MaxHP)
	}
}

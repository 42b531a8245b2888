package main

import (
	"fmt"
	"os"
	"time"

	"battleflow-server/internal/infrastructure/storage"
)

// histdump - инспектор файлов истории боя (.abhl).
// Печатает заголовок и список действий, ничего не проигрывая.
func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	svc := &storage.HistoryService{}
	session, err := svc.Load(os.Args[1])
	if err != nil {
		fmt.Printf("Failed to load %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	fmt.Printf("Encounter: %s\n", session.EncounterID)
	fmt.Printf("Saved at:  %s\n", time.Unix(session.Timestamp, 0).Format(time.RFC3339))
	fmt.Printf("Actions:   %d\n\n", len(session.Actions))

	for i, act := range session.Actions {
		line := fmt.Sprintf("%4d  %-24s", i, act.Type)
		if !act.Actor.IsNil() {
			line += fmt.Sprintf("  actor=%s", act.Actor)
		}
		if !act.Target.IsNil() {
			line += fmt.Sprintf("  target=%s", act.Target)
		}
		if act.Amount != 0 {
			line += fmt.Sprintf("  amount=%d", act.Amount)
		}
		if act.EffectID != "" {
			line += fmt.Sprintf("  effect=%s", act.EffectID)
		}
		fmt.Println(line)
	}
}

func printHelp() {
	fmt.Println(`histdump - инспектор истории боя
Usage:
  histdump <path/to/file.abhl>`)
}

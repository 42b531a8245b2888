package engine

import (
	"encoding/json"
	"testing"
	"time"

	"battleflow-server/internal/battle"
	"battleflow-server/pkg/api"
)

func testConfig() Config {
	return Config{
		Port:        0,
		HistoryDir:  ".",
		TurnTimeout: 500 * time.Millisecond,
	}
}

func demoParty() ([]battle.Combatant, []battle.Combatant) {
	players := []battle.Combatant{
		battle.NewCombatant("hero", "Hero", battle.NewStats(100, 100, 20, 20, 25, 5, 10), true),
	}
	enemies := []battle.Combatant{
		battle.NewCombatant("goblin", "Goblin", battle.NewStats(50, 50, 0, 0, 8, 2, 6), false),
	}
	return players, enemies
}

func TestBuildTurnOrder(t *testing.T) {
	state, _ := battle.Reduce(battle.NewBattleState(), battle.NewStartBattle(
		[]battle.Combatant{
			battle.NewCombatant("slow", "Slow", battle.NewStats(10, 10, 0, 0, 1, 1, 2), true),
			battle.NewCombatant("fast", "Fast", battle.NewStats(10, 10, 0, 0, 1, 1, 9), true),
		},
		[]battle.Combatant{
			battle.NewCombatant("a_tied", "TiedA", battle.NewStats(10, 10, 0, 0, 1, 1, 5), false),
			battle.NewCombatant("b_tied", "TiedB", battle.NewStats(10, 10, 0, 0, 1, 1, 5), false),
		},
	))

	order := buildTurnOrder(state)

	want := []battle.CombatantID{"fast", "a_tied", "b_tied", "slow"}
	if len(order) != len(want) {
		t.Fatalf("order length = %d, want %d", len(order), len(want))
	}
	for i, id := range want {
		if order[i] != id {
			t.Errorf("order[%d] = %s, want %s", i, order[i], id)
		}
	}
}

func TestBuildAction(t *testing.T) {
	s := NewService(testConfig())

	attackPayload, _ := json.Marshal(api.AttackPayload{TargetID: "goblin", Damage: 12})
	action, err := s.buildAction(api.ClientCommand{
		Token:   "hero",
		Action:  "ATTACK",
		Payload: attackPayload,
	})
	if err != nil {
		t.Fatalf("buildAction: %v", err)
	}
	if action.Type != battle.ActionAttack || action.Actor != "hero" || action.Target != "goblin" || action.Amount != 12 {
		t.Errorf("unexpected action: %+v", action)
	}

	action, err = s.buildAction(api.ClientCommand{Token: "hero", Action: "defend"})
	if err != nil {
		t.Fatalf("buildAction defend: %v", err)
	}
	if action.Type != battle.ActionDefend || action.Actor != "hero" {
		t.Errorf("unexpected defend action: %+v", action)
	}

	// Невалидный payload отклоняется
	badPayload, _ := json.Marshal(api.AttackPayload{TargetID: "", Damage: 5})
	if _, err := s.buildAction(api.ClientCommand{Token: "hero", Action: "ATTACK", Payload: badPayload}); err == nil {
		t.Error("expected error for payload without target")
	}

	// Сырые доменные действия снаружи не принимаются
	if _, err := s.buildAction(api.ClientCommand{Token: "hero", Action: "CHANGE_HP"}); err == nil {
		t.Error("expected error for non-client action")
	}
	if _, err := s.buildAction(api.ClientCommand{Token: "hero", Action: "NONSENSE"}); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestServiceFindCombatant(t *testing.T) {
	s := NewService(testConfig())
	players, enemies := demoParty()
	enc := s.CreateEncounter(players, enemies)
	defer enc.Stop()

	found, c, ok := s.FindCombatant("hero")
	if !ok {
		t.Fatal("hero not found")
	}
	if found.ID != enc.ID {
		t.Errorf("found encounter %s, want %s", found.ID, enc.ID)
	}
	if c.Name != "Hero" {
		t.Errorf("combatant name = %s", c.Name)
	}

	if _, _, ok := s.FindCombatant("ghost"); ok {
		t.Error("ghost must not be found")
	}
}

// Бой без единого подключенного клиента: все ходы делает AI,
// цикл обязан дойти до терминальной фазы сам.
func TestEncounterRunsToCompletion(t *testing.T) {
	s := NewService(testConfig())
	players, enemies := demoParty()
	enc := s.CreateEncounter(players, enemies)
	defer enc.Stop()

	deadline := time.After(5 * time.Second)
	for !enc.Store.IsBattleEnded() {
		select {
		case <-deadline:
			t.Fatalf("battle did not finish, phase %s", enc.Store.CurrentPhase())
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Герой сильнее: атака 25 против 50 HP гоблина
	if enc.Store.CurrentPhase() != battle.PhaseVictory {
		t.Errorf("phase = %v, want VICTORY", enc.Store.CurrentPhase())
	}
	if len(enc.Store.AliveEnemies()) != 0 {
		t.Error("enemies must be wiped out")
	}
	hero, _ := enc.Store.GetCombatant("hero")
	if hero.IsDefeated() {
		t.Error("hero must survive the demo matchup")
	}
}

// Команда игрока, пришедшая в его ход, применяется; таймаут
// принудительно защищает зазевавшегося игрока.
func TestEncounterHumanTurn(t *testing.T) {
	s := NewService(testConfig())
	players, enemies := demoParty()

	// Подписка ДО создания боя: герой сразу считается человеком
	updates := s.Hub.Register("hero")
	defer s.Hub.Unregister("hero")

	enc := s.CreateEncounter(players, enemies)
	defer enc.Stop()

	// Ждем своего хода
	var myTurn bool
	deadline := time.After(5 * time.Second)
	for !myTurn {
		select {
		case msg := <-updates:
			if msg.ActiveID == "hero" {
				myTurn = true
			}
		case <-deadline:
			t.Fatal("hero never got a turn")
		}
	}

	payload, _ := json.Marshal(api.AttackPayload{TargetID: "goblin", Damage: 30})
	s.ProcessCommand(api.ClientCommand{Token: "hero", Action: "ATTACK", Payload: payload})

	// Команда дошла до стора: у гоблина снято ровно 30
	deadline = time.After(5 * time.Second)
	for {
		goblin, _ := enc.Store.GetCombatant("goblin")
		if goblin.Stats.HP <= 20 {
			break
		}
		select {
		case <-updates:
		case <-deadline:
			t.Fatalf("attack was not applied, goblin HP %d", goblin.Stats.HP)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

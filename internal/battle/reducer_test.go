package battle

import (
	"reflect"
	"testing"
)

func newHero() Combatant {
	return NewCombatant("hero", "Hero", NewStats(100, 100, 20, 20, 25, 5, 10), true)
}

func newGoblin() Combatant {
	return NewCombatant("goblin", "Goblin", NewStats(50, 50, 0, 0, 8, 2, 6), false)
}

func startedState(t *testing.T) BattleState {
	t.Helper()
	state, _ := Reduce(NewBattleState(), NewStartBattle(
		[]Combatant{newHero()},
		[]Combatant{newGoblin()},
	))
	return state
}

func TestReduceStartBattle(t *testing.T) {
	// Prior state is ignored entirely: start from something dirty
	dirty, _ := Reduce(NewBattleState(), NewAdvanceTurn())
	dirty, _ = Reduce(dirty, NewAddEffects("leftover"))

	state, effects := Reduce(dirty, NewStartBattle(
		[]Combatant{newHero()},
		[]Combatant{newGoblin()},
	))

	if state.Phase() != PhaseTurnSelection {
		t.Errorf("phase = %v, want TURN_SELECTION", state.Phase())
	}
	if state.TurnCount() != 1 {
		t.Errorf("turnCount = %d, want 1", state.TurnCount())
	}
	if _, ok := state.CurrentActor(); ok {
		t.Error("currentActor must be unset after start")
	}
	if state.CombatantCount() != 2 {
		t.Errorf("combatant count = %d, want 2", state.CombatantCount())
	}
	if len(state.PendingEffects()) != 0 {
		t.Error("pending effects must be cleared by start")
	}
	if len(effects) != 2 {
		t.Fatalf("expected 2 effects (start + music), got %d", len(effects))
	}
	if effects[0].ID != "battle_start" || effects[1].ID != "battle_music_start" {
		t.Errorf("unexpected effect ids: %s, %s", effects[0].ID, effects[1].ID)
	}
}

func TestReduceStartBattleCollidingIDs(t *testing.T) {
	first := NewCombatant("dup", "First", NewStats(10, 10, 0, 0, 0, 0, 0), true)
	second := NewCombatant("dup", "Second", NewStats(20, 20, 0, 0, 0, 0, 0), true)

	state, _ := Reduce(NewBattleState(), NewStartBattle([]Combatant{first, second}, nil))

	got, ok := state.Combatant("dup")
	if !ok {
		t.Fatal("combatant dup not found")
	}
	// Later roster entry wins
	if got.Name != "Second" {
		t.Errorf("colliding id resolved to %s, want Second", got.Name)
	}
}

func TestReduceEndBattle(t *testing.T) {
	tests := []struct {
		result BattleResult
		phase  BattlePhase
		effect string
	}{
		{ResultVictory, PhaseVictory, "battle_end_victory"},
		{ResultDefeat, PhaseDefeat, "battle_end_defeat"},
		{ResultEscape, PhaseEscape, "battle_end_escape"},
		{ResultDraw, PhaseEscape, "battle_end_draw"},
	}

	for _, tt := range tests {
		state := startedState(t)
		next, effects := Reduce(state, NewEndBattle(tt.result))

		if next.Phase() != tt.phase {
			t.Errorf("%s: phase = %v, want %v", tt.result, next.Phase(), tt.phase)
		}
		if next.TurnCount() != state.TurnCount() {
			t.Errorf("%s: turnCount changed", tt.result)
		}
		if next.CombatantCount() != state.CombatantCount() {
			t.Errorf("%s: combatants changed", tt.result)
		}
		if len(effects) != 2 || effects[0].ID != tt.effect || effects[1].ID != "battle_music_stop" {
			t.Errorf("%s: unexpected effects %v", tt.result, effects)
		}
	}
}

func TestReduceAdvancePhase(t *testing.T) {
	state := startedState(t)
	next, effects := Reduce(state, NewAdvancePhase(PhaseActionExecution))

	if next.Phase() != PhaseActionExecution {
		t.Errorf("phase = %v, want ACTION_EXECUTION", next.Phase())
	}
	if len(effects) != 1 {
		t.Fatalf("expected exactly 1 effect, got %d", len(effects))
	}
	if effects[0].ID != "phase_transition_action_execution" {
		t.Errorf("effect id = %s, must encode destination phase", effects[0].ID)
	}
}

func TestReduceAdvanceTurn(t *testing.T) {
	state := startedState(t)
	state, _ = Reduce(state, NewSetCurrentActor("hero"))

	next, effects := Reduce(state, NewAdvanceTurn())

	if next.TurnCount() != state.TurnCount()+1 {
		t.Errorf("turnCount = %d, want %d", next.TurnCount(), state.TurnCount()+1)
	}
	if _, ok := next.CurrentActor(); ok {
		t.Error("advanceTurn must reset currentActor")
	}
	if len(effects) != 1 || effects[0].ID != "turn_advance" {
		t.Errorf("unexpected effects %v", effects)
	}
}

func TestReduceAttack(t *testing.T) {
	state := startedState(t)

	// Hero (atk 25) vs Goblin (hp 50): first swing for 30
	next, effects := Reduce(state, NewAttack("hero", "goblin", 30))

	goblin, _ := next.Combatant("goblin")
	if goblin.Stats.HP != 20 {
		t.Errorf("goblin HP = %d, want 20", goblin.Stats.HP)
	}
	if goblin.IsDefeated() {
		t.Error("goblin must not be defeated yet")
	}
	if len(effects) != 3 {
		t.Fatalf("expected 3 effects (animation, damage, sound), got %d", len(effects))
	}
	if effects[0].ID != "attack_animation_hero" {
		t.Errorf("effects[0] = %s", effects[0].ID)
	}
	if effects[1].ID != "damage_display_30" {
		t.Errorf("effects[1] = %s, must carry damage amount", effects[1].ID)
	}
	if effects[2].ID != "attack_sound" {
		t.Errorf("effects[2] = %s", effects[2].ID)
	}

	// Finishing blow: clamp at 0, defeated flips exactly at HP == 0
	next, _ = Reduce(next, NewAttack("hero", "goblin", 25))
	goblin, _ = next.Combatant("goblin")
	if goblin.Stats.HP != 0 {
		t.Errorf("goblin HP = %d, want 0", goblin.Stats.HP)
	}
	if !goblin.IsDefeated() {
		t.Error("goblin must be defeated at HP 0")
	}

	// Prior snapshot stays intact (immutability)
	original, _ := state.Combatant("goblin")
	if original.Stats.HP != 50 {
		t.Errorf("original snapshot mutated: HP = %d", original.Stats.HP)
	}
}

func TestReduceAttackMissingTarget(t *testing.T) {
	state := startedState(t)

	next, effects := Reduce(state, NewAttack("hero", "ghost", 99))

	// Silent miss: no state change, no effects
	if len(effects) != 0 {
		t.Errorf("expected no effects, got %d", len(effects))
	}
	if !reflect.DeepEqual(next.Combatants(), state.Combatants()) {
		t.Error("combatants changed on missing target")
	}
}

func TestReduceSkillItemPassthrough(t *testing.T) {
	state := startedState(t)

	next, effects := Reduce(state, NewUseSkill("hero", "fireball", "goblin"))
	if !reflect.DeepEqual(next.Combatants(), state.Combatants()) {
		t.Error("useSkill must not mutate state")
	}
	if len(effects) != 1 || effects[0].ID != "skill_effect_fireball" {
		t.Errorf("unexpected skill effects %v", effects)
	}

	next, effects = Reduce(state, NewUseItem("hero", "potion", "hero"))
	if !reflect.DeepEqual(next.Combatants(), state.Combatants()) {
		t.Error("useItem must not mutate state")
	}
	if len(effects) != 1 || effects[0].ID != "item_effect_potion" {
		t.Errorf("unexpected item effects %v", effects)
	}
}

func TestReduceDefend(t *testing.T) {
	state := startedState(t)
	next, effects := Reduce(state, NewDefend("hero"))

	if !reflect.DeepEqual(next.Combatants(), state.Combatants()) {
		t.Error("defend must not mutate state")
	}
	if len(effects) != 1 || effects[0].ID != "defend_hero" {
		t.Errorf("unexpected defend effects %v", effects)
	}
}

func TestReduceEscape(t *testing.T) {
	state := startedState(t)

	// Player-side escape succeeds
	next, effects := Reduce(state, NewEscape("hero"))
	if next.Phase() != PhaseEscape {
		t.Errorf("phase = %v, want ESCAPE", next.Phase())
	}
	if len(effects) != 1 || effects[0].ID != "escape_success" {
		t.Errorf("unexpected escape effects %v", effects)
	}

	// Enemy escape is an unimplemented extension point: strict no-op
	next, effects = Reduce(state, NewEscape("goblin"))
	if next.Phase() != state.Phase() {
		t.Error("enemy escape must not change phase")
	}
	if len(effects) != 0 {
		t.Errorf("enemy escape must emit no effects, got %v", effects)
	}
}

func TestReduceChangeHP(t *testing.T) {
	state := startedState(t)
	state, _ = Reduce(state, NewAttack("goblin", "hero", 40)) // hero 60/100

	next, effects := Reduce(state, NewChangeHP("hero", 25))
	hero, _ := next.Combatant("hero")
	if hero.Stats.HP != 85 {
		t.Errorf("hero HP = %d, want 85", hero.Stats.HP)
	}
	if len(effects) != 1 || effects[0].ID != "heal_25" {
		t.Errorf("unexpected heal effects %v", effects)
	}

	next, effects = Reduce(next, NewChangeHP("hero", -25))
	hero, _ = next.Combatant("hero")
	// Round-trip law: back to 60, no clamping happened on either step
	if hero.Stats.HP != 60 {
		t.Errorf("hero HP after round-trip = %d, want 60", hero.Stats.HP)
	}
	if len(effects) != 1 || effects[0].ID != "damage_25" {
		t.Errorf("unexpected damage effects %v", effects)
	}

	// Overheal clamps at MaxHP
	next, _ = Reduce(next, NewChangeHP("hero", 1000))
	hero, _ = next.Combatant("hero")
	if hero.Stats.HP != 100 {
		t.Errorf("overhealed HP = %d, want 100", hero.Stats.HP)
	}
}

func TestReduceChangeMP(t *testing.T) {
	// Mage with mp 30 / maxMP 40
	mage := NewCombatant("mage", "Mage", NewStats(50, 50, 30, 40, 5, 5, 5), true)
	state, _ := Reduce(NewBattleState(), NewStartBattle([]Combatant{mage}, nil))

	next, effects := Reduce(state, NewChangeMP("mage", 20))
	got, _ := next.Combatant("mage")
	if got.Stats.MP != 40 {
		t.Errorf("MP = %d, want 40 (clamped)", got.Stats.MP)
	}
	if len(effects) != 1 || effects[0].ID != "mp_change_+20" {
		t.Errorf("unexpected effects %v", effects)
	}

	next, effects = Reduce(next, NewChangeMP("mage", -100))
	got, _ = next.Combatant("mage")
	if got.Stats.MP != 0 {
		t.Errorf("MP = %d, want 0 (clamped)", got.Stats.MP)
	}
	if len(effects) != 1 || effects[0].ID != "mp_change_-100" {
		t.Errorf("unexpected effects %v", effects)
	}
}

func TestReduceStatusEffectsPassthrough(t *testing.T) {
	state := startedState(t)

	next, effects := Reduce(state, NewApplyStatusEffect("hero", "poison"))
	if !reflect.DeepEqual(next.Combatants(), state.Combatants()) {
		t.Error("applyStatusEffect must not mutate state")
	}
	if len(effects) != 1 || effects[0].ID != "status_apply_poison" {
		t.Errorf("unexpected effects %v", effects)
	}

	_, effects = Reduce(state, NewRemoveStatusEffect("hero", "poison"))
	if len(effects) != 1 || effects[0].ID != "status_remove_poison" {
		t.Errorf("unexpected effects %v", effects)
	}
}

func TestReduceTurnCoordination(t *testing.T) {
	state := startedState(t)

	next, effects := Reduce(state, NewSetCurrentActor("hero"))
	if actor, ok := next.CurrentActor(); !ok || actor != "hero" {
		t.Errorf("currentActor = %v, want hero", actor)
	}
	if len(effects) != 0 {
		t.Error("setCurrentActor must emit no effects")
	}

	// Clearing the actor with an empty id
	next, _ = Reduce(next, NewSetCurrentActor(NilCombatantID))
	if _, ok := next.CurrentActor(); ok {
		t.Error("empty id must clear currentActor")
	}

	_, effects = Reduce(state, NewBeginActionSelection("hero"))
	if len(effects) != 1 || effects[0].ID != "selection_begin" {
		t.Errorf("unexpected effects %v", effects)
	}
	_, effects = Reduce(state, NewCompleteActionSelection("hero"))
	if len(effects) != 1 || effects[0].ID != "selection_complete" {
		t.Errorf("unexpected effects %v", effects)
	}
}

func TestReduceEffectManagement(t *testing.T) {
	state := startedState(t)

	// addEffects queues but does not return effects to execute
	next, effects := Reduce(state, NewAddEffects("sparkle", "rumble"))
	if len(effects) != 0 {
		t.Error("addEffects must not return effects for immediate execution")
	}
	pending := next.PendingEffects()
	if len(pending) != 2 || pending[0].ID != "sparkle" || pending[1].ID != "rumble" {
		t.Errorf("pending = %v", pending)
	}

	// executeEffect is bookkeeping only: queue stays intact
	next2, effects := Reduce(next, NewExecuteEffect("sparkle"))
	if len(effects) != 0 {
		t.Error("executeEffect must emit no effects")
	}
	if len(next2.PendingEffects()) != 2 {
		t.Error("executeEffect must not drain the pending queue")
	}

	// clearEffects empties the queue
	next3, _ := Reduce(next2, NewClearEffects())
	if len(next3.PendingEffects()) != 0 {
		t.Error("clearEffects must empty the pending queue")
	}
}

func TestReduceAIStubs(t *testing.T) {
	state := startedState(t)

	next, effects := Reduce(state, NewAIDecideAction("goblin"))
	if !reflect.DeepEqual(next.Combatants(), state.Combatants()) {
		t.Error("aiDecideAction must not mutate state")
	}
	if len(effects) != 1 || effects[0].ID != "ai_thinking" {
		t.Errorf("unexpected effects %v", effects)
	}

	_, effects = Reduce(state, NewAIExecuteAction("goblin"))
	if len(effects) != 0 {
		t.Error("aiExecuteAction must be a pure no-op")
	}
}

// Purity: same inputs, structurally equal outputs.
func TestReduceIsDeterministic(t *testing.T) {
	state := startedState(t)
	action := NewAttack("hero", "goblin", 17)

	s1, e1 := Reduce(state, action)
	s2, e2 := Reduce(state, action)

	if !reflect.DeepEqual(s1.Combatants(), s2.Combatants()) {
		t.Error("two identical reductions produced different combatants")
	}
	if s1.Phase() != s2.Phase() || s1.TurnCount() != s2.TurnCount() {
		t.Error("two identical reductions produced different phase/turn")
	}
	if !reflect.DeepEqual(e1, e2) {
		t.Error("two identical reductions produced different effects")
	}
}

// Scenario: a defeated knight leaves alivePlayers and returns after healing.
func TestAliveViewsFollowDefeat(t *testing.T) {
	knight := NewCombatant("knight", "Knight", NewStats(0, 80, 0, 0, 10, 10, 5), true)
	state, _ := Reduce(NewBattleState(), NewStartBattle(
		[]Combatant{newHero(), knight},
		[]Combatant{newGoblin()},
	))

	alive := state.AlivePlayers()
	if len(alive) != 1 || alive[0].ID != "hero" {
		t.Fatalf("alivePlayers = %v, want only hero", alive)
	}

	state, _ = Reduce(state, NewChangeHP("knight", 50))
	got, _ := state.Combatant("knight")
	if got.Stats.HP != 50 {
		t.Errorf("knight HP = %d, want 50", got.Stats.HP)
	}

	alive = state.AlivePlayers()
	if len(alive) != 2 {
		t.Errorf("alivePlayers = %d combatants, want 2 after revival", len(alive))
	}
}

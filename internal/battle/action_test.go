package battle

import "testing"

func TestParseActionType(t *testing.T) {
	tests := []struct {
		input    string
		expected ActionType
	}{
		{"ATTACK", ActionAttack},
		{"attack", ActionAttack},
		{"Attack", ActionAttack},
		{"START_BATTLE", ActionStartBattle},
		{"ESCAPE", ActionEscape},
		{"CHANGE_HP", ActionChangeHP},
		{"UNKNOWN_ACTION", ActionUnknown},
		{"", ActionUnknown},
	}

	for _, tt := range tests {
		result := ParseActionType(tt.input)
		if result != tt.expected {
			t.Errorf("ParseActionType(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestActionType_String(t *testing.T) {
	tests := []struct {
		action   ActionType
		expected string
	}{
		{ActionAttack, "ATTACK"},
		{ActionDefend, "DEFEND"},
		{ActionAdvanceTurn, "ADVANCE_TURN"},
		{ActionUnknown, "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.action.String(); got != tt.expected {
			t.Errorf("ActionType(%d).String() = %q, want %q", tt.action, got, tt.expected)
		}
	}
}

func TestActionMetadata(t *testing.T) {
	// Escape is highest-priority and instant
	if ActionEscape.Tier() != TierHighest {
		t.Errorf("Escape tier = %v, want TierHighest", ActionEscape.Tier())
	}
	if !ActionEscape.IsInstant() {
		t.Error("Escape must be instant")
	}

	// Attack and skill are normal, defend is low
	if ActionAttack.Tier() != TierNormal {
		t.Errorf("Attack tier = %v, want TierNormal", ActionAttack.Tier())
	}
	if ActionUseSkill.Tier() != TierNormal {
		t.Errorf("UseSkill tier = %v, want TierNormal", ActionUseSkill.Tier())
	}
	if ActionDefend.Tier() != TierLow {
		t.Errorf("Defend tier = %v, want TierLow", ActionDefend.Tier())
	}
	if ActionAttack.IsInstant() {
		t.Error("Attack must not be instant")
	}
}

func TestActionCategories(t *testing.T) {
	tests := []struct {
		action   ActionType
		category ActionCategory
		flow     bool
	}{
		{ActionStartBattle, CategoryFlow, true},
		{ActionAdvanceTurn, CategoryFlow, true},
		{ActionAttack, CategoryCharacter, false},
		{ActionEscape, CategoryCharacter, false},
		{ActionChangeHP, CategoryStatus, true},
		{ActionSetCurrentActor, CategoryTurn, true},
		{ActionAddEffects, CategoryEffect, true},
		{ActionAIDecideAction, CategoryAI, true},
	}

	for _, tt := range tests {
		if got := tt.action.Category(); got != tt.category {
			t.Errorf("%s category = %v, want %v", tt.action, got, tt.category)
		}
		if got := tt.action.IsFlowControl(); got != tt.flow {
			t.Errorf("%s IsFlowControl = %v, want %v", tt.action, got, tt.flow)
		}
	}
}

func TestParsePhase(t *testing.T) {
	tests := []struct {
		input    string
		expected BattlePhase
	}{
		{"TURN_SELECTION", PhaseTurnSelection},
		{"turn_selection", PhaseTurnSelection},
		{"VICTORY", PhaseVictory},
		{"NOPE", PhaseUnknown},
	}

	for _, tt := range tests {
		if got := ParsePhase(tt.input); got != tt.expected {
			t.Errorf("ParsePhase(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestPhaseIsTerminal(t *testing.T) {
	terminal := []BattlePhase{PhaseVictory, PhaseDefeat, PhaseEscape}
	active := []BattlePhase{PhasePreparation, PhaseTurnSelection, PhaseActionExecution, PhaseEffectResolution}

	for _, p := range terminal {
		if !p.IsTerminal() {
			t.Errorf("%s must be terminal", p)
		}
	}
	for _, p := range active {
		if p.IsTerminal() {
			t.Errorf("%s must not be terminal", p)
		}
	}
}

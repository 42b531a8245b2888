package battle

import (
	"fmt"
	"strings"
)

// Reduce - чистая функция перехода: (состояние, действие) -> (новое
// состояние, эффекты). Никакого I/O, рандома и общей памяти: два вызова
// с одинаковыми входами обязаны дать структурно равные результаты.
//
// Политика ошибок (см. политику "тихого промаха"): действие с
// несуществующей целью - это no-op, а не сбой. Выход значений за границы
// гасится зажимом в конструкторах Stats. Reduce тотальна: валидное
// состояние возвращается всегда.
func Reduce(state BattleState, action Action) (BattleState, []Effect) {
	switch action.Type {
	case ActionStartBattle:
		return reduceStartBattle(action)
	case ActionEndBattle:
		return reduceEndBattle(state, action)
	case ActionAdvancePhase:
		return reduceAdvancePhase(state, action)
	case ActionAdvanceTurn:
		return reduceAdvanceTurn(state)
	case ActionAttack:
		return reduceAttack(state, action)
	case ActionUseSkill:
		// Заглушка-расширение: вычислением эффекта навыка занимается
		// внешний резолвер. Контракт "эффекты есть, состояние не трогаем"
		// менять нельзя - на него подписан будущий коллаборатор.
		return state, []Effect{NewEffect("skill_effect_" + action.SkillID)}
	case ActionUseItem:
		return state, []Effect{NewEffect("item_effect_" + action.ItemID)}
	case ActionDefend:
		// Временный бонус к защите не моделируется (осознанная заглушка)
		return state, []Effect{NewEffect("defend_" + action.Actor.String()).WithPriority(EffectPriorityLow)}
	case ActionEscape:
		return reduceEscape(state, action)
	case ActionChangeHP:
		return reduceChangeHP(state, action)
	case ActionChangeMP:
		return reduceChangeMP(state, action)
	case ActionApplyStatusEffect:
		// Учет длительности статусов вне зоны ответственности ядра
		return state, []Effect{NewEffect("status_apply_" + action.StatusID)}
	case ActionRemoveStatusEffect:
		return state, []Effect{NewEffect("status_remove_" + action.StatusID)}
	case ActionSetCurrentActor:
		return state.withCurrentActor(action.Actor), nil
	case ActionBeginActionSelection:
		return state, []Effect{NewEffect("selection_begin")}
	case ActionCompleteActionSelection:
		return state, []Effect{NewEffect("selection_complete")}
	case ActionAddEffects:
		return reduceAddEffects(state, action)
	case ActionExecuteEffect:
		// Чистая бухгалтерия: эффект уже исполнен снаружи, действие
		// существует только чтобы история диспатчей отразила завершение.
		// Очередь отложенных эффектов намеренно не трогаем.
		return state, nil
	case ActionClearEffects:
		return state.withPendingEffects(nil), nil
	case ActionAIDecideAction:
		// Решение принимает внешний ИИ-коллаборатор
		return state, []Effect{NewEffect("ai_thinking")}
	case ActionAIExecuteAction:
		return state, nil
	default:
		return state, nil
	}
}

// reduceStartBattle строит состояние с нуля: прошлое игнорируется
// целиком (полная замена, не слияние). При коллизии id побеждает
// более поздняя запись ростера.
func reduceStartBattle(action Action) (BattleState, []Effect) {
	state := NewBattleState()

	for _, p := range action.Players {
		state.combatants[p.ID] = p
		state.playerIDs[p.ID] = struct{}{}
	}
	for _, e := range action.Enemies {
		state.combatants[e.ID] = e
		state.enemyIDs[e.ID] = struct{}{}
	}

	state.phase = PhaseTurnSelection
	state.turnCount = 1
	state.currentActor = NilCombatantID

	return state, []Effect{
		NewEffect("battle_start").WithPriority(EffectPriorityHigh),
		NewEffect("battle_music_start"),
	}
}

func reduceEndBattle(state BattleState, action Action) (BattleState, []Effect) {
	var phase BattlePhase
	switch action.Result {
	case ResultVictory:
		phase = PhaseVictory
	case ResultDefeat:
		phase = PhaseDefeat
	default:
		// Побег и ничья сводятся к фазе ESCAPE
		phase = PhaseEscape
	}

	// Участники и счетчик ходов остаются как есть
	return state.withPhase(phase), []Effect{
		NewEffect("battle_end_" + strings.ToLower(action.Result.String())).WithPriority(EffectPriorityHigh),
		NewEffect("battle_music_stop").WithPriority(EffectPriorityLow),
	}
}

func reduceAdvancePhase(state BattleState, action Action) (BattleState, []Effect) {
	return state.withPhase(action.Phase), []Effect{
		NewEffect("phase_transition_" + strings.ToLower(action.Phase.String())),
	}
}

func reduceAdvanceTurn(state BattleState) (BattleState, []Effect) {
	next := state.
		withTurnCount(state.turnCount + 1).
		withCurrentActor(NilCombatantID)
	return next, []Effect{NewEffect("turn_advance")}
}

func reduceAttack(state BattleState, action Action) (BattleState, []Effect) {
	target, ok := state.combatants[action.Target]
	if !ok {
		// Тихий промах: цель могла умереть или id устарел
		return state, nil
	}

	// Урон применяется как есть: учет защиты - дело внешнего
	// резолвера навыков, а не ядра
	newStats := target.Stats.WithHP(target.Stats.HP - action.Amount)
	next := state.withCombatant(target.WithStats(newStats))

	return next, []Effect{
		NewEffect("attack_animation_" + action.Actor.String()).WithPriority(EffectPriorityHigh),
		NewEffect(fmt.Sprintf("damage_display_%d", action.Amount)),
		NewEffect("attack_sound").WithPriority(EffectPriorityLow),
	}
}

func reduceEscape(state BattleState, action Action) (BattleState, []Effect) {
	if !state.IsPlayerCombatant(action.Actor) {
		// Побег противника не реализован - точка расширения
		return state, nil
	}
	return state.withPhase(PhaseEscape), []Effect{
		NewEffect("escape_success").WithPriority(EffectPriorityTop),
	}
}

func reduceChangeHP(state BattleState, action Action) (BattleState, []Effect) {
	target, ok := state.combatants[action.Target]
	if !ok {
		return state, nil
	}

	newStats := target.Stats.WithHP(target.Stats.HP + action.Amount)
	next := state.withCombatant(target.WithStats(newStats))

	var effect Effect
	if action.Amount > 0 {
		effect = NewEffect(fmt.Sprintf("heal_%d", action.Amount))
	} else {
		effect = NewEffect(fmt.Sprintf("damage_%d", -action.Amount))
	}
	return next, []Effect{effect}
}

func reduceChangeMP(state BattleState, action Action) (BattleState, []Effect) {
	target, ok := state.combatants[action.Target]
	if !ok {
		return state, nil
	}

	newStats := target.Stats.WithMP(target.Stats.MP + action.Amount)
	next := state.withCombatant(target.WithStats(newStats))

	return next, []Effect{NewEffect(fmt.Sprintf("mp_change_%+d", action.Amount))}
}

// reduceAddEffects ставит эффекты в очередь, но НЕ возвращает их на
// исполнение: исполняются только эффекты, возвращенные из Reduce.
func reduceAddEffects(state BattleState, action Action) (BattleState, []Effect) {
	pending := append([]Effect(nil), state.pendingEffects...)
	for _, id := range action.EffectIDs {
		pending = append(pending, NewEffect(id))
	}
	return state.withPendingEffects(pending), nil
}

package battle

import (
	"sort"
	"strings"
)

// BattlePhase - стадия жизненного цикла боя
type BattlePhase uint8

const (
	PhaseUnknown BattlePhase = iota
	PhasePreparation
	PhaseTurnSelection
	PhaseActionExecution
	PhaseEffectResolution
	PhaseVictory
	PhaseDefeat
	PhaseEscape
)

// Маппинг для конвертации JSON -> Domain
var phaseStringToCmd = map[string]BattlePhase{
	"PREPARATION":       PhasePreparation,
	"TURN_SELECTION":    PhaseTurnSelection,
	"ACTION_EXECUTION":  PhaseActionExecution,
	"EFFECT_RESOLUTION": PhaseEffectResolution,
	"VICTORY":           PhaseVictory,
	"DEFEAT":            PhaseDefeat,
	"ESCAPE":            PhaseEscape,
}

// Маппинг для логов Domain -> String
var phaseCmdToString = func() map[BattlePhase]string {
	m := make(map[BattlePhase]string, len(phaseStringToCmd))
	for s, p := range phaseStringToCmd {
		m[p] = s
	}
	return m
}()

// ParsePhase конвертирует строку в BattlePhase
func ParsePhase(s string) BattlePhase {
	if val, ok := phaseStringToCmd[strings.ToUpper(s)]; ok {
		return val
	}
	return PhaseUnknown
}

func (p BattlePhase) String() string {
	if val, ok := phaseCmdToString[p]; ok {
		return val
	}
	return "UNKNOWN"
}

// IsTerminal - бой завершен (победа, поражение или побег)
func (p BattlePhase) IsTerminal() bool {
	return p == PhaseVictory || p == PhaseDefeat || p == PhaseEscape
}

// BattleState - неизменяемый снимок боя.
// Новые состояния порождает ТОЛЬКО редьюсер; Store никогда не меняет
// поля напрямую. Все "мутации" идут через with*-хелперы, которые
// копируют затронутые структуры (copy-on-write).
type BattleState struct {
	phase          BattlePhase
	combatants     map[CombatantID]Combatant
	playerIDs      map[CombatantID]struct{}
	enemyIDs       map[CombatantID]struct{}
	turnCount      int
	currentActor   CombatantID
	pendingEffects []Effect
}

// NewBattleState создает пустое состояние до начала боя
func NewBattleState() BattleState {
	return BattleState{
		phase:      PhasePreparation,
		combatants: map[CombatantID]Combatant{},
		playerIDs:  map[CombatantID]struct{}{},
		enemyIDs:   map[CombatantID]struct{}{},
	}
}

// --- Запросы (только чтение) ---

// Phase возвращает текущую стадию боя
func (s BattleState) Phase() BattlePhase {
	return s.phase
}

// TurnCount возвращает номер текущего хода
func (s BattleState) TurnCount() int {
	return s.turnCount
}

// CurrentActor возвращает активного участника, если он назначен
func (s BattleState) CurrentActor() (CombatantID, bool) {
	return s.currentActor, !s.currentActor.IsNil()
}

// Combatant ищет участника по id
func (s BattleState) Combatant(id CombatantID) (Combatant, bool) {
	c, ok := s.combatants[id]
	return c, ok
}

// CombatantCount возвращает число участников боя
func (s BattleState) CombatantCount() int {
	return len(s.combatants)
}

// Combatants возвращает всех участников, отсортированных по id.
// Сортировка нужна для детерминизма: мапы в Go итерируются случайно.
func (s BattleState) Combatants() []Combatant {
	all := make([]Combatant, 0, len(s.combatants))
	for _, c := range s.combatants {
		all = append(all, c)
	}
	sortCombatants(all)
	return all
}

// AlivePlayers возвращает живых участников со стороны игрока
func (s BattleState) AlivePlayers() []Combatant {
	return s.aliveOf(s.playerIDs)
}

// AliveEnemies возвращает живых участников со стороны противника
func (s BattleState) AliveEnemies() []Combatant {
	return s.aliveOf(s.enemyIDs)
}

func (s BattleState) aliveOf(side map[CombatantID]struct{}) []Combatant {
	alive := make([]Combatant, 0, len(side))
	for id := range side {
		if c, ok := s.combatants[id]; ok && !c.IsDefeated() {
			alive = append(alive, c)
		}
	}
	sortCombatants(alive)
	return alive
}

// IsPlayerCombatant проверяет принадлежность к стороне игрока
func (s BattleState) IsPlayerCombatant(id CombatantID) bool {
	_, ok := s.playerIDs[id]
	return ok
}

// IsEnemyCombatant проверяет принадлежность к стороне противника
func (s BattleState) IsEnemyCombatant(id CombatantID) bool {
	_, ok := s.enemyIDs[id]
	return ok
}

// PendingEffects возвращает копию очереди отложенных эффектов
func (s BattleState) PendingEffects() []Effect {
	return append([]Effect(nil), s.pendingEffects...)
}

// IsEnded - бой находится в терминальной фазе
func (s BattleState) IsEnded() bool {
	return s.phase.IsTerminal()
}

// --- Copy-with хелперы (приватные, используются редьюсером) ---

func (s BattleState) withPhase(p BattlePhase) BattleState {
	s.phase = p
	return s
}

func (s BattleState) withTurnCount(n int) BattleState {
	s.turnCount = n
	return s
}

func (s BattleState) withCurrentActor(id CombatantID) BattleState {
	s.currentActor = id
	return s
}

// withCombatant заменяет участника, клонируя мапу.
// Старый снимок остается нетронутым.
func (s BattleState) withCombatant(c Combatant) BattleState {
	next := make(map[CombatantID]Combatant, len(s.combatants))
	for id, existing := range s.combatants {
		next[id] = existing
	}
	next[c.ID] = c
	s.combatants = next
	return s
}

func (s BattleState) withPendingEffects(effects []Effect) BattleState {
	s.pendingEffects = effects
	return s
}

// clone делает глубокую копию снимка. Используется Store, чтобы отдать
// состояние наружу, не деля внутренние мапы с вызывающим кодом.
func (s BattleState) clone() BattleState {
	combatants := make(map[CombatantID]Combatant, len(s.combatants))
	for id, c := range s.combatants {
		combatants[id] = c
	}
	s.combatants = combatants
	s.playerIDs = cloneIDSet(s.playerIDs)
	s.enemyIDs = cloneIDSet(s.enemyIDs)
	s.pendingEffects = append([]Effect(nil), s.pendingEffects...)
	return s
}

func cloneIDSet(set map[CombatantID]struct{}) map[CombatantID]struct{} {
	next := make(map[CombatantID]struct{}, len(set))
	for id := range set {
		next[id] = struct{}{}
	}
	return next
}

func sortCombatants(list []Combatant) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
}

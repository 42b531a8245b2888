package battle

import "strings"

// ActionType - Внутренний числовой идентификатор боевого действия
type ActionType uint8

const (
	ActionUnknown ActionType = iota

	// Управление ходом боя
	ActionStartBattle
	ActionEndBattle
	ActionAdvancePhase
	ActionAdvanceTurn

	// Действия персонажей
	ActionAttack
	ActionUseSkill
	ActionUseItem
	ActionDefend
	ActionEscape

	// Изменения состояния
	ActionChangeHP
	ActionChangeMP
	ActionApplyStatusEffect
	ActionRemoveStatusEffect

	// Координация ходов
	ActionSetCurrentActor
	ActionBeginActionSelection
	ActionCompleteActionSelection

	// Управление эффектами
	ActionAddEffects
	ActionExecuteEffect
	ActionClearEffects

	// Координация ИИ
	ActionAIDecideAction
	ActionAIExecuteAction
)

// Маппинг для конвертации JSON -> Domain
var actionStringToCmd = map[string]ActionType{
	"START_BATTLE":              ActionStartBattle,
	"END_BATTLE":                ActionEndBattle,
	"ADVANCE_PHASE":             ActionAdvancePhase,
	"ADVANCE_TURN":              ActionAdvanceTurn,
	"ATTACK":                    ActionAttack,
	"USE_SKILL":                 ActionUseSkill,
	"USE_ITEM":                  ActionUseItem,
	"DEFEND":                    ActionDefend,
	"ESCAPE":                    ActionEscape,
	"CHANGE_HP":                 ActionChangeHP,
	"CHANGE_MP":                 ActionChangeMP,
	"APPLY_STATUS_EFFECT":       ActionApplyStatusEffect,
	"REMOVE_STATUS_EFFECT":      ActionRemoveStatusEffect,
	"SET_CURRENT_ACTOR":         ActionSetCurrentActor,
	"BEGIN_ACTION_SELECTION":    ActionBeginActionSelection,
	"COMPLETE_ACTION_SELECTION": ActionCompleteActionSelection,
	"ADD_EFFECTS":               ActionAddEffects,
	"EXECUTE_EFFECT":            ActionExecuteEffect,
	"CLEAR_EFFECTS":             ActionClearEffects,
	"AI_DECIDE_ACTION":          ActionAIDecideAction,
	"AI_EXECUTE_ACTION":         ActionAIExecuteAction,
}

// Маппинг для логов Domain -> String
var actionCmdToString = func() map[ActionType]string {
	m := make(map[ActionType]string, len(actionStringToCmd))
	for s, t := range actionStringToCmd {
		m[t] = s
	}
	return m
}()

// ParseActionType конвертирует строку из JSON в ActionType
func ParseActionType(s string) ActionType {
	// Делаем нечувствительным к регистру для надежности
	upper := strings.ToUpper(s)
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// ActionCategory - группа, к которой относится действие
type ActionCategory uint8

const (
	CategoryUnknown ActionCategory = iota
	CategoryFlow                   // управление ходом боя
	CategoryCharacter              // действие персонажа
	CategoryStatus                 // корректировка статов
	CategoryTurn                   // координация ходов
	CategoryEffect                 // управление очередью эффектов
	CategoryAI                     // координация ИИ
)

var categoryToString = map[ActionCategory]string{
	CategoryFlow:      "FLOW",
	CategoryCharacter: "CHARACTER",
	CategoryStatus:    "STATUS",
	CategoryTurn:      "TURN",
	CategoryEffect:    "EFFECT",
	CategoryAI:        "AI",
}

func (c ActionCategory) String() string {
	if val, ok := categoryToString[c]; ok {
		return val
	}
	return "UNKNOWN"
}

// ActionTier - приоритет действия при планировании хода
type ActionTier uint8

const (
	TierLowest ActionTier = iota
	TierLow
	TierNormal
	TierHigh
	TierHighest
)

// actionMeta - статические метаданные действия.
// Category определяет группу, Tier и Instant используются планировщиком ходов.
type actionMeta struct {
	Category ActionCategory
	Tier     ActionTier
	Instant  bool
}

var actionMetaTable = map[ActionType]actionMeta{
	ActionStartBattle:  {Category: CategoryFlow, Tier: TierNormal},
	ActionEndBattle:    {Category: CategoryFlow, Tier: TierNormal},
	ActionAdvancePhase: {Category: CategoryFlow, Tier: TierNormal},
	ActionAdvanceTurn:  {Category: CategoryFlow, Tier: TierNormal},

	// Побег - мгновенный и самый приоритетный. Защита - медленная.
	ActionAttack:   {Category: CategoryCharacter, Tier: TierNormal},
	ActionUseSkill: {Category: CategoryCharacter, Tier: TierNormal},
	ActionUseItem:  {Category: CategoryCharacter, Tier: TierNormal},
	ActionDefend:   {Category: CategoryCharacter, Tier: TierLow},
	ActionEscape:   {Category: CategoryCharacter, Tier: TierHighest, Instant: true},

	ActionChangeHP:           {Category: CategoryStatus, Tier: TierNormal},
	ActionChangeMP:           {Category: CategoryStatus, Tier: TierNormal},
	ActionApplyStatusEffect:  {Category: CategoryStatus, Tier: TierNormal},
	ActionRemoveStatusEffect: {Category: CategoryStatus, Tier: TierNormal},

	ActionSetCurrentActor:         {Category: CategoryTurn, Tier: TierNormal},
	ActionBeginActionSelection:    {Category: CategoryTurn, Tier: TierNormal},
	ActionCompleteActionSelection: {Category: CategoryTurn, Tier: TierNormal},

	ActionAddEffects:    {Category: CategoryEffect, Tier: TierNormal},
	ActionExecuteEffect: {Category: CategoryEffect, Tier: TierNormal},
	ActionClearEffects:  {Category: CategoryEffect, Tier: TierNormal},

	ActionAIDecideAction:  {Category: CategoryAI, Tier: TierNormal},
	ActionAIExecuteAction: {Category: CategoryAI, Tier: TierNormal},
}

// Category возвращает группу действия
func (a ActionType) Category() ActionCategory {
	if meta, ok := actionMetaTable[a]; ok {
		return meta.Category
	}
	return CategoryUnknown
}

// IsFlowControl сообщает, является ли действие управляющим (а не действием персонажа)
func (a ActionType) IsFlowControl() bool {
	return a.Category() != CategoryCharacter
}

// Tier возвращает приоритет действия при планировании хода
func (a ActionType) Tier() ActionTier {
	if meta, ok := actionMetaTable[a]; ok {
		return meta.Tier
	}
	return TierNormal
}

// IsInstant сообщает, исполняется ли действие вне обычной очереди ходов
func (a ActionType) IsInstant() bool {
	if meta, ok := actionMetaTable[a]; ok {
		return meta.Instant
	}
	return false
}

// BattleResult - исход завершенного боя
type BattleResult uint8

const (
	ResultUnknown BattleResult = iota
	ResultVictory
	ResultDefeat
	ResultEscape
	ResultDraw
)

var resultStringToCmd = map[string]BattleResult{
	"VICTORY": ResultVictory,
	"DEFEAT":  ResultDefeat,
	"ESCAPE":  ResultEscape,
	"DRAW":    ResultDraw,
}

var resultCmdToString = map[BattleResult]string{
	ResultVictory: "VICTORY",
	ResultDefeat:  "DEFEAT",
	ResultEscape:  "ESCAPE",
	ResultDraw:    "DRAW",
}

// ParseResult конвертирует строку в BattleResult
func ParseResult(s string) BattleResult {
	if val, ok := resultStringToCmd[strings.ToUpper(s)]; ok {
		return val
	}
	return ResultUnknown
}

func (r BattleResult) String() string {
	if val, ok := resultCmdToString[r]; ok {
		return val
	}
	return "UNKNOWN"
}

// Action - тегированное объединение всех боевых событий.
// Какие поля заполнены, определяется полем Type; остальные остаются нулевыми.
// Action сериализуется в JSON как есть (для лога истории боя).
type Action struct {
	Type ActionType `json:"type"`

	// Ростеры для START_BATTLE
	Players []Combatant `json:"players,omitempty"`
	Enemies []Combatant `json:"enemies,omitempty"`

	// Исход для END_BATTLE
	Result BattleResult `json:"result,omitempty"`

	// Целевая фаза для ADVANCE_PHASE
	Phase BattlePhase `json:"phase,omitempty"`

	// Участники
	Actor  CombatantID `json:"actor,omitempty"`
	Target CombatantID `json:"target,omitempty"`

	// Числовой параметр: урон для ATTACK, дельта для CHANGE_HP / CHANGE_MP
	Amount int `json:"amount,omitempty"`

	// Идентификаторы навыка / предмета / статуса / эффекта
	SkillID   string   `json:"skillId,omitempty"`
	ItemID    string   `json:"itemId,omitempty"`
	StatusID  string   `json:"statusId,omitempty"`
	EffectID  string   `json:"effectId,omitempty"`
	EffectIDs []string `json:"effectIds,omitempty"`
}

// --- Конструкторы действий ---

func NewStartBattle(players, enemies []Combatant) Action {
	return Action{Type: ActionStartBattle, Players: players, Enemies: enemies}
}

func NewEndBattle(result BattleResult) Action {
	return Action{Type: ActionEndBattle, Result: result}
}

func NewAdvancePhase(phase BattlePhase) Action {
	return Action{Type: ActionAdvancePhase, Phase: phase}
}

func NewAdvanceTurn() Action {
	return Action{Type: ActionAdvanceTurn}
}

func NewAttack(attacker, target CombatantID, damage int) Action {
	return Action{Type: ActionAttack, Actor: attacker, Target: target, Amount: damage}
}

func NewUseSkill(actor CombatantID, skillID string, target CombatantID) Action {
	return Action{Type: ActionUseSkill, Actor: actor, SkillID: skillID, Target: target}
}

func NewUseItem(actor CombatantID, itemID string, target CombatantID) Action {
	return Action{Type: ActionUseItem, Actor: actor, ItemID: itemID, Target: target}
}

func NewDefend(defender CombatantID) Action {
	return Action{Type: ActionDefend, Actor: defender}
}

func NewEscape(escaper CombatantID) Action {
	return Action{Type: ActionEscape, Actor: escaper}
}

func NewChangeHP(target CombatantID, amount int) Action {
	return Action{Type: ActionChangeHP, Target: target, Amount: amount}
}

func NewChangeMP(target CombatantID, amount int) Action {
	return Action{Type: ActionChangeMP, Target: target, Amount: amount}
}

func NewApplyStatusEffect(target CombatantID, statusID string) Action {
	return Action{Type: ActionApplyStatusEffect, Target: target, StatusID: statusID}
}

func NewRemoveStatusEffect(target CombatantID, statusID string) Action {
	return Action{Type: ActionRemoveStatusEffect, Target: target, StatusID: statusID}
}

// NewSetCurrentActor назначает активного участника.
// Пустой id снимает назначение (NilCombatantID).
func NewSetCurrentActor(id CombatantID) Action {
	return Action{Type: ActionSetCurrentActor, Actor: id}
}

func NewBeginActionSelection(actor CombatantID) Action {
	return Action{Type: ActionBeginActionSelection, Actor: actor}
}

func NewCompleteActionSelection(actor CombatantID) Action {
	return Action{Type: ActionCompleteActionSelection, Actor: actor}
}

func NewAddEffects(effectIDs ...string) Action {
	return Action{Type: ActionAddEffects, EffectIDs: effectIDs}
}

func NewExecuteEffect(effectID string) Action {
	return Action{Type: ActionExecuteEffect, EffectID: effectID}
}

func NewClearEffects() Action {
	return Action{Type: ActionClearEffects}
}

func NewAIDecideAction(actor CombatantID) Action {
	return Action{Type: ActionAIDecideAction, Actor: actor}
}

func NewAIExecuteAction(actor CombatantID) Action {
	return Action{Type: ActionAIExecuteAction, Actor: actor}
}

package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// ServerResponse это корневой объект, который сервер отправляет клиенту.
// Он представляет собой полный "снимок" боя, видимый для конкретного клиента.
// Отправляется после каждого закоммиченного изменения состояния.
type ServerResponse struct {
	// Type тип сообщения. На данный момент всегда "UPDATE".
	Type string `json:"type"`

	// EncounterID идентификатор боя, к которому относится снимок.
	EncounterID string `json:"encounterId,omitempty"`

	// Phase текущая стадия боя (TURN_SELECTION, ACTION_EXECUTION, ...).
	Phase string `json:"phase"`

	// Turn номер текущего хода. Увеличивается с каждым ADVANCE_TURN.
	Turn int `json:"turn"`

	// ActiveID ID участника, чей ход сейчас.
	// КЛИЕНТ ДОЛЖЕН СРАВНИВАТЬ ЭТО ПОЛЕ СО СВОИМ ID. Если они совпадают,
	// значит, можно принимать ввод от игрока.
	ActiveID string `json:"activeId,omitempty"`

	// MyID ID участника, которым управляет данный клиент.
	MyID string `json:"myId,omitempty"`

	// BattleEnded true, когда бой находится в терминальной фазе.
	BattleEnded bool `json:"battleEnded"`

	// Combatants срез всех участников боя.
	Combatants []CombatantView `json:"combatants,omitempty"`

	// Logs срез новых сообщений, сгенерированных с прошлого обновления.
	Logs []LogEntry `json:"logs,omitempty"`
}

// CombatantView это DTO (Data Transfer Object) для одного участника боя.
type CombatantView struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Side сторона участника: PLAYER или ENEMY.
	Side string `json:"side"`

	// IsDefeated true, когда у участника не осталось здоровья.
	IsDefeated bool `json:"isDefeated"`

	// Stats характеристики участника. Поле может отсутствовать (omitempty),
	// если клиент не имеет права видеть статы этого участника.
	Stats *StatsView `json:"stats,omitempty"`
}

// StatsView это DTO для характеристик участника.
// Для противников сервер показывает только здоровье, остальное скрыто.
type StatsView struct {
	HP      int `json:"hp"`
	MaxHP   int `json:"maxHp"`
	MP      int `json:"mp,omitempty"`
	MaxMP   int `json:"maxMp,omitempty"`
	Attack  int `json:"attack,omitempty"`
	Defense int `json:"defense,omitempty"`
	Speed   int `json:"speed,omitempty"`
}

// LogEntry представляет одну запись в боевом логе.
type LogEntry struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Type      string `json:"type"`      // INFO, COMBAT, EFFECT, ERROR
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Token ID участника, от имени которого выполняется действие.
	// Обязателен только для первого сообщения "LOGIN".
	Token string `json:"token,omitempty"`

	// Action название действия, которое нужно выполнить.
	Action string `json:"action"`

	// Payload JSON-объект с данными для действия. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload"`
}

// --- Payloads ---

// AttackPayload используется для действия ATTACK.
type AttackPayload struct {
	TargetID string `json:"targetId"`
	Damage   int    `json:"damage"`
}

// SkillPayload используется для действия USE_SKILL.
type SkillPayload struct {
	SkillID  string `json:"skillId"`
	TargetID string `json:"targetId,omitempty"`
}

// ItemPayload используется для действия USE_ITEM.
type ItemPayload struct {
	ItemID   string `json:"itemId"`
	TargetID string `json:"targetId,omitempty"`
}

// DeltaPayload используется для прямых изменений ресурсов (CHANGE_HP, CHANGE_MP).
type DeltaPayload struct {
	TargetID string `json:"targetId"`
	Amount   int    `json:"amount"`
}

// StatusPayload используется для статусных эффектов (APPLY_STATUS, REMOVE_STATUS).
type StatusPayload struct {
	TargetID string `json:"targetId"`
	StatusID string `json:"statusId"`
}

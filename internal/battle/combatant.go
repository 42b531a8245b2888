package battle

// CombatantID - непрозрачный идентификатор участника боя.
// Сравнивается по значению. В рамках одного боя не переиспользуется.
type CombatantID string

// NilCombatantID - аналог nil для случаев "участник не назначен"
const NilCombatantID CombatantID = ""

// IsNil проверяет, назначен ли идентификатор
func (id CombatantID) IsNil() bool {
	return id == NilCombatantID
}

func (id CombatantID) String() string {
	return string(id)
}

// Combatant - участник боя. Значение неизменяемо: "мутация" - это
// создание новой копии с обновленными Stats. Идентичность несет ID,
// а не адрес структуры.
type Combatant struct {
	ID                 CombatantID `json:"id"`
	Name               string      `json:"name"`
	Stats              Stats       `json:"stats"`
	IsPlayerControlled bool        `json:"isPlayerControlled"`
}

// NewCombatant создает участника боя
func NewCombatant(id CombatantID, name string, stats Stats, playerControlled bool) Combatant {
	return Combatant{
		ID:                 id,
		Name:               name,
		Stats:              stats,
		IsPlayerControlled: playerControlled,
	}
}

// WithStats возвращает копию участника с новыми характеристиками
func (c Combatant) WithStats(stats Stats) Combatant {
	c.Stats = stats
	return c
}

// IsDefeated - удобный срез до Stats
func (c Combatant) IsDefeated() bool {
	return c.Stats.IsDefeated()
}

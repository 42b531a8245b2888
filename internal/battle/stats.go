package battle

// Stats - неизменяемые боевые характеристики.
// Инварианты 0 <= HP <= MaxHP и 0 <= MP <= MaxMP поддерживаются
// ТОЛЬКО конструкторами (NewStats, WithHP, WithMP). Никакой другой код
// не валидирует границы - он обязан создавать Stats через них.
type Stats struct {
	HP      int `json:"hp"`
	MaxHP   int `json:"maxHp"`
	MP      int `json:"mp"`
	MaxMP   int `json:"maxMp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// NewStats создает характеристики, приводя значения к допустимым границам.
// Отрицательные максимумы обнуляются, текущие значения зажимаются в [0, max].
func NewStats(hp, maxHP, mp, maxMP, attack, defense, speed int) Stats {
	if maxHP < 0 {
		maxHP = 0
	}
	if maxMP < 0 {
		maxMP = 0
	}
	return Stats{
		HP:      clamp(hp, 0, maxHP),
		MaxHP:   maxHP,
		MP:      clamp(mp, 0, maxMP),
		MaxMP:   maxMP,
		Attack:  attack,
		Defense: defense,
		Speed:   speed,
	}
}

// WithHP возвращает копию с новым HP, зажатым в [0, MaxHP]
func (s Stats) WithHP(hp int) Stats {
	s.HP = clamp(hp, 0, s.MaxHP)
	return s
}

// WithMP возвращает копию с новым MP, зажатым в [0, MaxMP]
func (s Stats) WithMP(mp int) Stats {
	s.MP = clamp(mp, 0, s.MaxMP)
	return s
}

// IsDefeated - участник выбывает ровно при HP == 0
func (s Stats) IsDefeated() bool {
	return s.HP == 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

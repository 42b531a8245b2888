package battle

import "sort"

// Effect - дескриптор внешнего побочного эффекта (анимация, звук, UI).
// Сам поведения не несет: это только идентификатор и приоритет исполнения.
// Исполнением занимается внешний обработчик, подключенный к Store.
type Effect struct {
	ID       string `json:"id"`
	Priority int    `json:"priority"`
}

// Приоритеты исполнения эффектов внутри одного батча.
// Чем больше число, тем раньше эффект будет исполнен.
const (
	EffectPriorityNone   = 0
	EffectPriorityLow    = 25
	EffectPriorityNormal = 50
	EffectPriorityHigh   = 75
	EffectPriorityTop    = 100
)

// NoEffect - сентинел "наблюдаемого эффекта нет".
// Используется там, где действие по контракту обязано вернуть эффект,
// но показывать нечего.
var NoEffect = Effect{ID: "none", Priority: EffectPriorityNone}

// NewEffect создает эффект с обычным приоритетом
func NewEffect(id string) Effect {
	return Effect{ID: id, Priority: EffectPriorityNormal}
}

// WithPriority возвращает копию эффекта с другим приоритетом
func (e Effect) WithPriority(p int) Effect {
	e.Priority = p
	return e
}

// IsNone проверяет, является ли эффект сентинелом
func (e Effect) IsNone() bool {
	return e.ID == NoEffect.ID && e.Priority == EffectPriorityNone
}

// SortEffects возвращает копию слайса, отсортированную по убыванию приоритета.
// Сортировка стабильная: при равных приоритетах сохраняется порядок эмиссии.
// Исходный слайс не трогаем.
func SortEffects(effects []Effect) []Effect {
	sorted := append([]Effect(nil), effects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return sorted
}

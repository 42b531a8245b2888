package battle

import (
	"sync"

	"github.com/sirupsen/logrus"

	"battleflow-server/pkg/logger"
)

// EffectHandler - внешний исполнитель эффектов (анимация, звук, UI).
// Получает дескриптор по значению и не владеет боевым состоянием.
// Если обработчику нужно актуальное состояние, он обязан запросить его
// у Store: читать "мимо" Store небезопасно, состояние могло уйти вперед.
type EffectHandler func(Effect)

// Store владеет единственным текущим BattleState и историей действий.
// Коммиты состояния синхронны и полностью упорядочены порядком вызовов
// Dispatch; исполнение эффектов уходит в отдельную горутину на каждый
// диспатч и НЕ упорядочено между батчами разных диспатчей.
//
// Store - не глобальный синглтон: экземпляр передается явно, поэтому
// несколько независимых боев могут жить параллельно.
type Store struct {
	mu      sync.Mutex
	state   BattleState
	history []Action
	handler EffectHandler
}

// NewStore создает стор с пустым состоянием и обработчиком по умолчанию
// (логирование вместо исполнения).
func NewStore() *Store {
	return &Store{
		state:   NewBattleState(),
		handler: defaultEffectHandler,
	}
}

// defaultEffectHandler подставляется, когда внешний обработчик не
// установлен: эффект просто фиксируется в логе.
func defaultEffectHandler(e Effect) {
	logger.WithComponent("battle_store").WithFields(logrus.Fields{
		"effect_id": e.ID,
		"priority":  e.Priority,
	}).Info("Effect executed (no handler installed)")
}

// SetHandler устанавливает внешний исполнитель эффектов.
// nil возвращает поведение по умолчанию.
func (s *Store) SetHandler(h EffectHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h == nil {
		h = defaultEffectHandler
	}
	s.handler = h
}

// Dispatch применяет действие к текущему состоянию.
//
//  1. Действие записывается в историю (отладка/реплей).
//  2. Редьюсер вызывается синхронно, новое состояние коммитится сразу и
//     безусловно: Dispatch тотален и никогда не отклоняет действие.
//  3. Эффекты уходят на асинхронное исполнение; управление возвращается
//     вызывающему не дожидаясь их завершения.
//
// Возвращаемый канал закрывается после исполнения всего батча эффектов -
// вызывающий (и тесты) могут детерминированно дождаться завершения.
//
// Мьютекс никогда не удерживается через исполнение эффекта: повторный
// вход (executeEffect из горутины батча) берет тот же самый путь
// коммита без риска дедлока.
func (s *Store) Dispatch(action Action) <-chan struct{} {
	s.mu.Lock()
	s.history = append(s.history, action)

	if !action.Target.IsNil() {
		if _, ok := s.state.Combatant(action.Target); !ok {
			// Политика тихого промаха: редьюсер вернет no-op,
			// но для диагностики оставляем след в debug-логе
			logger.WithComponent("battle_store").WithFields(logrus.Fields{
				"action": action.Type.String(),
				"target": action.Target,
			}).Debug("Dispatch target not found, action is a no-op")
		}
	}

	next, effects := Reduce(s.state, action)
	s.state = next
	handler := s.handler
	s.mu.Unlock()

	done := make(chan struct{})
	if len(effects) == 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		// Внутри батча порядок гарантирован: по убыванию приоритета,
		// при равенстве - порядок эмиссии. Эффекты исполняются
		// последовательно, не конкурентно.
		for _, effect := range SortEffects(effects) {
			handler(effect)
			// Бухгалтерская запись о завершении. Новых эффектов она
			// не порождает, поэтому рекурсия здесь не раскручивается.
			s.Dispatch(NewExecuteEffect(effect.ID))
		}
	}()
	return done
}

// DispatchAll применяет действия строго по порядку: каждый следующий
// коммит начинается только после синхронного коммита предыдущего.
// Канал закрывается, когда завершены эффекты ВСЕХ батчей.
func (s *Store) DispatchAll(actions []Action) <-chan struct{} {
	dones := make([]<-chan struct{}, 0, len(actions))
	for _, action := range actions {
		dones = append(dones, s.Dispatch(action))
	}

	all := make(chan struct{})
	go func() {
		defer close(all)
		for _, done := range dones {
			<-done
		}
	}()
	return all
}

// ResetState заменяет состояние целиком и очищает историю.
// nil означает "начать с чистого листа". Используется для нового боя
// без создания нового Store.
func (s *Store) ResetState(state *BattleState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == nil {
		s.state = NewBattleState()
	} else {
		s.state = state.clone()
	}
	s.history = nil
}

// --- Публичные операции (тонкие обертки над Dispatch) ---

func (s *Store) StartBattle(players, enemies []Combatant) <-chan struct{} {
	return s.Dispatch(NewStartBattle(players, enemies))
}

func (s *Store) EndBattle(result BattleResult) <-chan struct{} {
	return s.Dispatch(NewEndBattle(result))
}

func (s *Store) PerformAttack(attacker, target CombatantID, damage int) <-chan struct{} {
	return s.Dispatch(NewAttack(attacker, target, damage))
}

func (s *Store) ChangeHP(target CombatantID, amount int) <-chan struct{} {
	return s.Dispatch(NewChangeHP(target, amount))
}

func (s *Store) SetCurrentActor(id CombatantID) <-chan struct{} {
	return s.Dispatch(NewSetCurrentActor(id))
}

func (s *Store) AdvanceTurn() <-chan struct{} {
	return s.Dispatch(NewAdvanceTurn())
}

func (s *Store) AdvanceToPhase(phase BattlePhase) <-chan struct{} {
	return s.Dispatch(NewAdvancePhase(phase))
}

// --- Запросы (только чтение закоммиченного состояния) ---

// State возвращает глубокую копию текущего снимка
func (s *Store) State() BattleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) IsBattleEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsEnded()
}

func (s *Store) AlivePlayers() []Combatant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AlivePlayers()
}

func (s *Store) AliveEnemies() []Combatant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AliveEnemies()
}

func (s *Store) CurrentPhase() BattlePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase()
}

func (s *Store) CurrentTurn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TurnCount()
}

func (s *Store) CurrentActor() (CombatantID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentActor()
}

func (s *Store) GetCombatant(id CombatantID) (Combatant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Combatant(id)
}

func (s *Store) IsPlayerCombatant(id CombatantID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsPlayerCombatant(id)
}

func (s *Store) IsEnemyCombatant(id CombatantID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsEnemyCombatant(id)
}

// History возвращает копию истории действий.
// История не ограничена по размеру и очищается только в ResetState.
func (s *Store) History() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Action(nil), s.history...)
}

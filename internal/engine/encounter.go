package engine

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"battleflow-server/internal/battle"
	"battleflow-server/pkg/api"
	"battleflow-server/pkg/logger"
)

// Encounter представляет собой один изолированный запущенный бой.
// У каждого боя свой Store, свой порядок ходов и свой цикл в горутине.
type Encounter struct {
	ID    string
	Store *battle.Store

	// order - порядок ходов на раунд: по убыванию скорости, при
	// равенстве по id. Вычисляется один раз при создании боя.
	order  []battle.CombatantID
	cursor int

	commandChan chan battle.Action
	stopChan    chan struct{}
	stopOnce    sync.Once

	// Локальные логи боя, копятся обработчиком эффектов и
	// очищаются после рассылки
	logMu sync.Mutex
	logs  []api.LogEntry

	service *BattleService
}

func newEncounter(id string, service *BattleService, players, enemies []battle.Combatant) *Encounter {
	enc := &Encounter{
		ID:          id,
		Store:       battle.NewStore(),
		commandChan: make(chan battle.Action, 100),
		stopChan:    make(chan struct{}),
		service:     service,
	}

	// Исполненные эффекты превращаются в записи боевого лога
	enc.Store.SetHandler(enc.handleEffect)
	<-enc.Store.StartBattle(players, enemies)

	enc.order = buildTurnOrder(enc.Store.State())
	return enc
}

// buildTurnOrder сортирует участников по убыванию скорости.
// Детерминированный порядок: при равной скорости решает id.
func buildTurnOrder(state battle.BattleState) []battle.CombatantID {
	all := state.Combatants()
	sort.Slice(all, func(i, j int) bool {
		if all[i].Stats.Speed != all[j].Stats.Speed {
			return all[i].Stats.Speed > all[j].Stats.Speed
		}
		return all[i].ID < all[j].ID
	})

	order := make([]battle.CombatantID, 0, len(all))
	for _, c := range all {
		order = append(order, c.ID)
	}
	return order
}

// Submit передает действие в цикл боя. Не блокирует отправителя:
// переполненный канал роняет команду, клиент повторит по таймауту.
func (e *Encounter) Submit(action battle.Action) {
	select {
	case e.commandChan <- action:
	case <-e.stopChan:
	default:
		logger.Log.WithField("encounter_id", e.ID).Warn("Command channel full, action dropped")
	}
}

// Stop останавливает цикл боя. Повторные вызовы безопасны.
func (e *Encounter) Stop() {
	e.stopOnce.Do(func() { close(e.stopChan) })
}

// Run запускает цикл ЭТОГО боя.
//
// Каждая итерация: выбрать актора -> разослать состояние -> дождаться
// команды (или отдать ход AI) -> проверить исход. Цикл завершается,
// когда бой попадает в терминальную фазу.
func (e *Encounter) Run() {
	logger.Log.WithField("encounter_id", e.ID).Info("Encounter loop started")

	for {
		select {
		case <-e.stopChan:
			logger.Log.WithField("encounter_id", e.ID).Info("Encounter loop stopped")
			return
		default:
		}

		if e.Store.IsBattleEnded() {
			// Финальная рассылка: клиенты видят терминальную фазу
			e.publishUpdate(battle.NilCombatantID)
			logger.Log.WithFields(logrus.Fields{
				"encounter_id": e.ID,
				"phase":        e.Store.CurrentPhase().String(),
				"turns":        e.Store.CurrentTurn(),
			}).Info("Encounter finished")
			return
		}

		actor, ok := e.nextActor()
		if !ok {
			// Живых не осталось ни с одной стороны
			<-e.Store.EndBattle(battle.ResultDraw)
			continue
		}

		<-e.Store.SetCurrentActor(actor)
		<-e.Store.Dispatch(battle.NewBeginActionSelection(actor))
		e.publishUpdate(actor)

		// Ход человека или ход AI: критерий - активное подключение в Hub
		if e.service.Hub.HasSubscriber(actor) {
			e.awaitAction(actor)
		} else {
			e.processAITurn(actor)
		}

		<-e.Store.Dispatch(battle.NewCompleteActionSelection(actor))
		e.resolveOutcome()
	}
}

// nextActor возвращает следующего живого участника по порядку ходов.
// Когда курсор проходит весь круг, наступает новый ход (ADVANCE_TURN).
func (e *Encounter) nextActor() (battle.CombatantID, bool) {
	state := e.Store.State()

	for tries := 0; tries < len(e.order); tries++ {
		if e.cursor >= len(e.order) {
			e.cursor = 0
			<-e.Store.AdvanceTurn()
		}
		id := e.order[e.cursor]
		e.cursor++

		if c, ok := state.Combatant(id); ok && !c.IsDefeated() {
			return id, true
		}
	}
	return battle.NilCombatantID, false
}

// awaitAction ждет команду активного игрока.
// По таймауту участник принудительно защищается и теряет ход.
func (e *Encounter) awaitAction(actor battle.CombatantID) {
	timeout := time.After(e.service.Cfg.TurnTimeout)

	for {
		select {
		case action := <-e.commandChan:
			// Принимаем только команды того, чей сейчас ход
			if action.Actor != actor {
				logger.Log.WithFields(logrus.Fields{
					"encounter_id": e.ID,
					"from":         action.Actor,
					"active":       actor,
				}).Debug("Out of turn command ignored")
				continue
			}
			<-e.Store.Dispatch(action)
			return

		case <-timeout:
			logger.Log.WithFields(logrus.Fields{
				"encounter_id": e.ID,
				"actor":        actor,
			}).Warn("Turn timed out")
			<-e.Store.Dispatch(battle.NewDefend(actor))
			return

		case <-e.stopChan:
			return
		}
	}
}

// processAITurn обрабатывает ход участника без подключенного клиента.
// Пока простая политика: атаковать первого живого с противоположной
// стороны, урон = атака минус защита, минимум 1.
func (e *Encounter) processAITurn(actor battle.CombatantID) {
	<-e.Store.Dispatch(battle.NewAIDecideAction(actor))

	self, ok := e.Store.GetCombatant(actor)
	if !ok {
		return
	}

	var targets []battle.Combatant
	if e.Store.IsEnemyCombatant(actor) {
		targets = e.Store.AlivePlayers()
	} else {
		targets = e.Store.AliveEnemies()
	}
	if len(targets) == 0 {
		return
	}

	target := targets[0]
	damage := self.Stats.Attack - target.Stats.Defense
	if damage < 1 {
		damage = 1
	}

	<-e.Store.PerformAttack(actor, target.ID, damage)
	<-e.Store.Dispatch(battle.NewAIExecuteAction(actor))
}

// resolveOutcome завершает бой, когда одна из сторон выбита.
// Побег уже переводит фазу сам, здесь ничего делать не нужно.
func (e *Encounter) resolveOutcome() {
	if e.Store.IsBattleEnded() {
		return
	}
	if len(e.Store.AliveEnemies()) == 0 {
		<-e.Store.EndBattle(battle.ResultVictory)
		return
	}
	if len(e.Store.AlivePlayers()) == 0 {
		<-e.Store.EndBattle(battle.ResultDefeat)
	}
}

// handleEffect превращает исполненный эффект в запись боевого лога.
// Вызывается из горутины батча эффектов, отсюда мьютекс.
func (e *Encounter) handleEffect(effect battle.Effect) {
	e.logMu.Lock()
	defer e.logMu.Unlock()
	e.logs = append(e.logs, api.LogEntry{
		ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		Text:      effect.ID,
		Type:      "EFFECT",
		Timestamp: time.Now().UnixMilli(),
	})
}

// drainLogs забирает накопленные логи и очищает буфер
func (e *Encounter) drainLogs() []api.LogEntry {
	e.logMu.Lock()
	defer e.logMu.Unlock()
	logs := e.logs
	e.logs = nil
	return logs
}

// publishUpdate рассылает состояние всем подключенным участникам
func (e *Encounter) publishUpdate(activeID battle.CombatantID) {
	state := e.Store.State()
	logs := e.drainLogs()

	for _, c := range state.Combatants() {
		if e.service.Hub.HasSubscriber(c.ID) {
			e.service.Hub.SendTo(c.ID, e.buildStateFor(state, c.ID, activeID, logs))
		}
	}
}

// Snapshot строит персональный слепок боя без изъятия логов.
// Используется при логине и в debug-эндпоинтах.
func (e *Encounter) Snapshot(observer battle.CombatantID) api.ServerResponse {
	state := e.Store.State()
	active, _ := state.CurrentActor()
	return e.buildStateFor(state, observer, active, nil)
}

// buildStateFor создает персональный слепок боя для observer
func (e *Encounter) buildStateFor(state battle.BattleState, observer, activeID battle.CombatantID, logs []api.LogEntry) api.ServerResponse {
	combatants := state.Combatants()
	views := make([]api.CombatantView, 0, len(combatants))
	for _, c := range combatants {
		views = append(views, e.toCombatantView(state, c, observer))
	}

	return api.ServerResponse{
		Type:        "UPDATE",
		EncounterID: e.ID,
		Phase:       state.Phase().String(),
		Turn:        state.TurnCount(),
		ActiveID:    string(activeID),
		MyID:        string(observer),
		BattleEnded: state.IsEnded(),
		Combatants:  views,
		Logs:        logs,
	}
}

// toCombatantView конвертирует участника в DTO с учетом прав доступа.
// Своя сторона видит все статы, противник - только здоровье.
func (e *Encounter) toCombatantView(state battle.BattleState, target battle.Combatant, observer battle.CombatantID) api.CombatantView {
	side := "ENEMY"
	if state.IsPlayerCombatant(target.ID) {
		side = "PLAYER"
	}

	view := api.CombatantView{
		ID:         string(target.ID),
		Name:       target.Name,
		Side:       side,
		IsDefeated: target.IsDefeated(),
	}

	sameSide := state.IsPlayerCombatant(observer) == state.IsPlayerCombatant(target.ID)
	if target.ID == observer || sameSide {
		// Союзники видят всё
		view.Stats = &api.StatsView{
			HP: target.Stats.HP, MaxHP: target.Stats.MaxHP,
			MP: target.Stats.MP, MaxMP: target.Stats.MaxMP,
			Attack: target.Stats.Attack, Defense: target.Stats.Defense,
			Speed: target.Stats.Speed,
		}
	} else {
		// Противники видят минимум
		view.Stats = &api.StatsView{
			HP: target.Stats.HP, MaxHP: target.Stats.MaxHP,
		}
	}
	return view
}

package agent

import (
	"encoding/json"

	"battleflow-server/internal/battle"
	"battleflow-server/internal/engine"
	"battleflow-server/pkg/api"
	"battleflow-server/pkg/logger"
)

// Bot представляет собой "Игрока-компьютера" (Headless Agent).
// Этот код является примером ВНЕШНЕГО клиента, который подключается к серверу
// так же, как и обычный игрок через WebSocket. Он получает снимки боя
// и на их основе принимает решение, какую команду отправить обратно.
//
// Жизненный цикл:
//  1. NewBot -> Регистрация в хабе сервера, получение личного канала (Inbox).
//  2. Run -> Запуск в отдельной горутине, слушает свой Inbox.
//  3. При получении снимка, если сейчас ход бота (ActiveID == CombatantID),
//     вызывается makeMove.
//  4. makeMove -> Анализирует снимок и отправляет команду.
type Bot struct {
	CombatantID battle.CombatantID
	Service     *engine.BattleService // Прямая ссылка на движок (для простоты в этом проекте)
	Inbox       chan api.ServerResponse
}

func NewBot(id battle.CombatantID, service *engine.BattleService) *Bot {
	logger.Log.WithField("combatant_id", id).Info("Creating bot agent")
	return &Bot{
		CombatantID: id,
		Service:     service,
		// Бот регистрируется в хабе как обычный клиент и получает свой канал для обновлений.
		Inbox: service.Hub.Register(id),
	}
}

// Run запускает цикл жизни бота. Должен быть запущен в горутине.
func (b *Bot) Run() {
	defer b.Service.Hub.Unregister(b.CombatantID)

	for snapshot := range b.Inbox {
		if snapshot.BattleEnded {
			break
		}
		// Бот реагирует только тогда, когда Арбитр сообщает: "Твой ход".
		if snapshot.ActiveID == string(b.CombatantID) {
			b.makeMove(snapshot)
		}
	}
	logger.Log.WithField("combatant_id", b.CombatantID).Info("Bot agent shut down")
}

// makeMove — это мозг бота. Он принимает решение на основе снимка боя.
// Бот видит ровно то же, что и игрок: полные статы союзников и только
// здоровье противников.
func (b *Bot) makeMove(snapshot api.ServerResponse) {
	me := b.findSelf(snapshot)
	if me == nil || me.IsDefeated {
		return // Мертвые не ходят
	}

	target := b.pickTarget(snapshot, me.Side)
	if target == nil {
		// Бить некого: защищаемся и отдаем ход
		b.sendDefend()
		return
	}

	// Урон считаем от своей атаки; защиту цели сервер не раскрывает
	damage := 1
	if me.Stats != nil && me.Stats.Attack > 0 {
		damage = me.Stats.Attack
	}
	b.sendAttack(target.ID, damage)
}

// findSelf ищет собственный DTO в снимке
func (b *Bot) findSelf(snapshot api.ServerResponse) *api.CombatantView {
	for i := range snapshot.Combatants {
		if snapshot.Combatants[i].ID == string(b.CombatantID) {
			return &snapshot.Combatants[i]
		}
	}
	return nil
}

// pickTarget выбирает живого противника с наименьшим здоровьем.
// Добивание раненых заканчивает бой быстрее, чем размазывание урона.
func (b *Bot) pickTarget(snapshot api.ServerResponse, mySide string) *api.CombatantView {
	var target *api.CombatantView
	for i := range snapshot.Combatants {
		c := &snapshot.Combatants[i]
		if c.Side == mySide || c.IsDefeated {
			continue
		}
		if target == nil || (c.Stats != nil && target.Stats != nil && c.Stats.HP < target.Stats.HP) {
			target = c
		}
	}
	return target
}

// --- Хелперы для отправки команд на сервер ---

func (b *Bot) sendCommand(action battle.ActionType, payload interface{}) {
	var payloadBytes json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			logger.Log.WithField("combatant_id", b.CombatantID).WithError(err).Error("Bot payload marshal failed")
			return
		}
		payloadBytes = raw
	}

	b.Service.ProcessCommand(api.ClientCommand{
		Action:  action.String(),
		Payload: payloadBytes,
		Token:   string(b.CombatantID),
	})
}

func (b *Bot) sendAttack(targetID string, damage int) {
	b.sendCommand(battle.ActionAttack, api.AttackPayload{TargetID: targetID, Damage: damage})
}

func (b *Bot) sendDefend() {
	b.sendCommand(battle.ActionDefend, nil)
}

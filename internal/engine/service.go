package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"battleflow-server/internal/battle"
	"battleflow-server/internal/network"
	"battleflow-server/pkg/api"
	"battleflow-server/pkg/logger"
)

// BattleService управляет набором одновременных боев (Encounter).
// Каждый бой живет в собственной горутине со своим Store; сервис
// только маршрутизирует команды и раздает подключения через Hub.
type BattleService struct {
	mu         sync.RWMutex
	encounters map[string]*Encounter

	Hub *network.Broadcaster
	Cfg Config
}

func NewService(cfg Config) *BattleService {
	return &BattleService{
		encounters: make(map[string]*Encounter),
		Hub:        network.NewBroadcaster(),
		Cfg:        cfg,
	}
}

// CreateEncounter создает новый бой и запускает его цикл.
func (s *BattleService) CreateEncounter(players, enemies []battle.Combatant) *Encounter {
	enc := newEncounter(uuid.NewString(), s, players, enemies)

	s.mu.Lock()
	s.encounters[enc.ID] = enc
	s.mu.Unlock()

	logger.Log.WithFields(logrus.Fields{
		"encounter_id": enc.ID,
		"players":      len(players),
		"enemies":      len(enemies),
	}).Info("Encounter created")

	go enc.Run()
	return enc
}

// Encounter возвращает бой по id
func (s *BattleService) Encounter(id string) (*Encounter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	enc, ok := s.encounters[id]
	return enc, ok
}

// Encounters возвращает все бои, отсортированные по id
func (s *BattleService) Encounters() []*Encounter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Encounter, 0, len(s.encounters))
	for _, enc := range s.encounters {
		all = append(all, enc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// FindCombatant ищет участника по id среди всех боев.
// Используется при логине: токен клиента должен соответствовать
// существующему участнику.
func (s *BattleService) FindCombatant(id battle.CombatantID) (*Encounter, battle.Combatant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, enc := range s.encounters {
		if c, ok := enc.Store.GetCombatant(id); ok {
			return enc, c, true
		}
	}
	return nil, battle.Combatant{}, false
}

// Shutdown останавливает циклы всех боев.
func (s *BattleService) Shutdown() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, enc := range s.encounters {
		enc.Stop()
	}
}

// ProcessCommand принимает команду от внешнего мира (WebSocket),
// конвертирует ее в доменное действие и отдает бою участника.
// Здесь мы доверяем, что Token уже проверен при логине.
func (s *BattleService) ProcessCommand(cmd api.ClientCommand) {
	action, err := s.buildAction(cmd)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"token":  cmd.Token,
			"action": cmd.Action,
		}).WithError(err).Warn("Rejected client command")
		return
	}

	enc, _, ok := s.FindCombatant(battle.CombatantID(cmd.Token))
	if !ok {
		logger.Log.WithField("token", cmd.Token).Warn("Command from unknown combatant")
		return
	}
	enc.Submit(action)
}

// buildAction конвертирует внешнюю команду в battle.Action.
// Payload валидируется до конвертации.
func (s *BattleService) buildAction(cmd api.ClientCommand) (battle.Action, error) {
	actor := battle.CombatantID(cmd.Token)

	switch battle.ParseActionType(cmd.Action) {
	case battle.ActionAttack:
		var p api.AttackPayload
		if err := unmarshalPayload(cmd.Payload, &p); err != nil {
			return battle.Action{}, err
		}
		return battle.NewAttack(actor, battle.CombatantID(p.TargetID), p.Damage), nil

	case battle.ActionUseSkill:
		var p api.SkillPayload
		if err := unmarshalPayload(cmd.Payload, &p); err != nil {
			return battle.Action{}, err
		}
		return battle.NewUseSkill(actor, p.SkillID, battle.CombatantID(p.TargetID)), nil

	case battle.ActionUseItem:
		var p api.ItemPayload
		if err := unmarshalPayload(cmd.Payload, &p); err != nil {
			return battle.Action{}, err
		}
		return battle.NewUseItem(actor, p.ItemID, battle.CombatantID(p.TargetID)), nil

	case battle.ActionDefend:
		return battle.NewDefend(actor), nil

	case battle.ActionEscape:
		return battle.NewEscape(actor), nil

	default:
		return battle.Action{}, fmt.Errorf("unsupported client action %q", cmd.Action)
	}
}

func unmarshalPayload(raw json.RawMessage, target api.Validator) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := target.Validate(); err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	return nil
}

package server

import (
	"encoding/json"
	"net/http"

	"battleflow-server/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию боев
type DebugHandler struct {
	Service *engine.BattleService
}

func NewDebugHandler(s *engine.BattleService) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/encounters", h.handleListEncounters)
	mux.HandleFunc("/debug/state", h.handleDumpState)
	mux.HandleFunc("/debug/history", h.handleDumpHistory)
}

// /debug/encounters - список активных боев
func (h *DebugHandler) handleListEncounters(w http.ResponseWriter, r *http.Request) {
	type EncounterSummary struct {
		ID          string `json:"id"`
		Phase       string `json:"phase"`
		Turn        int    `json:"turn"`
		Combatants  int    `json:"combatants"`
		BattleEnded bool   `json:"battle_ended"`
	}

	var summary []EncounterSummary
	for _, enc := range h.Service.Encounters() {
		state := enc.Store.State()
		summary = append(summary, EncounterSummary{
			ID:          enc.ID,
			Phase:       state.Phase().String(),
			Turn:        state.TurnCount(),
			Combatants:  state.CombatantCount(),
			BattleEnded: state.IsEnded(),
		})
	}

	writeJSON(w, summary)
}

// /debug/state?encounter=<id> - полный дамп участников боя,
// включая скрытые от клиентов статы
func (h *DebugHandler) handleDumpState(w http.ResponseWriter, r *http.Request) {
	enc, ok := h.Service.Encounter(r.URL.Query().Get("encounter"))
	if !ok {
		http.Error(w, "Encounter not found", http.StatusNotFound)
		return
	}

	writeJSON(w, enc.Store.State().Combatants())
}

// /debug/history?encounter=<id> - вся история действий боя,
// включая бухгалтерские записи об исполненных эффектах
func (h *DebugHandler) handleDumpHistory(w http.ResponseWriter, r *http.Request) {
	enc, ok := h.Service.Encounter(r.URL.Query().Get("encounter"))
	if !ok {
		http.Error(w, "Encounter not found", http.StatusNotFound)
		return
	}

	writeJSON(w, enc.Store.History())
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локального debug_client.html)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	// Если data == nil (например, пустая история), возвращаем пустой массив [], а не null
	if data == nil {
		w.Write([]byte("[]"))
		return
	}

	json.NewEncoder(w).Encode(data)
}

package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"battleflow-server/internal/battle"
)

func (s *HistoryService) Load(path string) (*HistorySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readBinary(f)
}

func readBinary(r io.Reader) (*HistorySession, error) {
	// 1. Читаем заголовок целиком
	var header HistoryFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return nil, fmt.Errorf("invalid magic")
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, Version1)
	}

	idBuf := make([]byte, header.IDLen)
	if _, err := io.ReadFull(r, idBuf); err != nil {
		return nil, fmt.Errorf("failed to read encounter id: %w", err)
	}

	session := &HistorySession{
		EncounterID: string(idBuf),
		Timestamp:   header.Timestamp,
		Actions:     make([]battle.Action, header.ActionCount),
	}

	// 2. Читаем Actions
	for i := 0; i < int(header.ActionCount); i++ {
		var ah ActionHeader
		if err := binary.Read(r, binary.LittleEndian, &ah); err != nil {
			return nil, err
		}

		payload := make([]byte, ah.PayloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}

		var act battle.Action
		if err := json.Unmarshal(payload, &act); err != nil {
			return nil, fmt.Errorf("unmarshal action %d: %w", i, err)
		}

		// Тип в заголовке дублирует JSON: сверяем на целостность
		if uint8(act.Type) != ah.ActionType {
			return nil, fmt.Errorf("action %d: header type %d does not match payload type %d", i, ah.ActionType, act.Type)
		}

		session.Actions[i] = act
	}

	return session, nil
}

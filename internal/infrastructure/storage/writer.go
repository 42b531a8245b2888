package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"battleflow-server/internal/battle"
)

const (
	MagicHeader string = `ABHL` // 4 байта
	Version1    uint32 = 1
)

// HistorySession - история одного боя, готовая к сохранению.
// Действия лежат в порядке коммитов, реплей их просто передиспатчит.
type HistorySession struct {
	EncounterID string
	Timestamp   int64
	Actions     []battle.Action
}

// HistoryFileHeader — это точное представление заголовка файла в памяти.
// binary.Write умеет писать это целиком, так как тут нет слайсов и строк, только массивы и числа.
type HistoryFileHeader struct {
	Magic       [4]byte // 4 байта
	Version     uint32  // 4 байта
	Timestamp   int64   // 8 байт
	IDLen       uint8   // 1 байт
	ActionCount int32   // 4 байта
}

// ActionHeader — заголовок каждой записи действия.
// Тело действия сериализуется в JSON: структура Action слишком
// разнородная для фиксированной бинарной раскладки.
type ActionHeader struct {
	ActionType uint8  // 1
	PayloadLen uint16 // 2
}

type HistoryService struct {
	SaveDir string
}

func NewHistoryService(dir string) *HistoryService {
	// Создаем папку если нет
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = os.MkdirAll(dir, 0755)
	}
	return &HistoryService{SaveDir: dir}
}

func (s *HistoryService) Save(session *HistorySession) error {
	filename := fmt.Sprintf("battle_%s_%d.abhl", session.EncounterID, session.Timestamp)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return writeBinary(f, session)
}

func writeBinary(w io.Writer, s *HistorySession) error {
	idBytes := []byte(s.EncounterID)
	if len(idBytes) > 255 {
		return fmt.Errorf("encounter id too long: %d", len(idBytes))
	}

	// 1. Пишем ГЛОБАЛЬНЫЙ ЗАГОЛОВОК одной командой
	header := HistoryFileHeader{
		Version:     Version1,
		Timestamp:   s.Timestamp,
		IDLen:       uint8(len(idBytes)),
		ActionCount: int32(len(s.Actions)),
	}
	copy(header.Magic[:], MagicHeader) // Копируем строку в массив [4]byte

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(idBytes); err != nil {
		return err
	}

	// 2. Пишем действия
	for _, act := range s.Actions {
		payload, err := json.Marshal(act)
		if err != nil {
			return fmt.Errorf("marshal action %s: %w", act.Type, err)
		}
		if len(payload) > 65535 {
			return fmt.Errorf("payload too long: %d", len(payload))
		}

		actHeader := ActionHeader{
			ActionType: uint8(act.Type),
			PayloadLen: uint16(len(payload)),
		}

		if err := binary.Write(w, binary.LittleEndian, &actHeader); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}

	return nil
}

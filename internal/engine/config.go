package engine

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config хранит параметры запуска сервера. Все значения берутся из
// окружения, дефолты подходят для локальной разработки.
type Config struct {
	// Port - HTTP/WebSocket порт сервера
	Port int `env:"BF_PORT" envDefault:"8080"`

	// HistoryDir - каталог, куда пишутся файлы истории боев (.abhl)
	HistoryDir string `env:"BF_HISTORY_DIR" envDefault:"./history"`

	// TurnTimeout - сколько ждем команду от игрока, прежде чем
	// принудительно перевести его в защиту
	TurnTimeout time.Duration `env:"BF_TURN_TIMEOUT" envDefault:"60s"`
}

// LoadConfig читает конфигурацию из переменных окружения
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}

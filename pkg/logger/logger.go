package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opções para o logger.
type Config struct {
	Env   string // development -> console legível; production -> JSON
	Level string // trace, debug, info, warn, error
}

// Logger wrapper sobre zerolog para injeção e consistência.
type Logger struct {
	zl zerolog.Logger
}

// New cria um logger estruturado. Em development usa saída legível; em production JSON.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	level := parseLevel(cfg.Level)
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()

	// Redirecionar o logger global do zerolog para bibliotecas que o usem
	log.Logger = zl

	return &Logger{zl: zl}
}

// Nop devolve um logger que descarta tudo (testes).
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Trace, Debug, Info, Warn, Error delegados ao zerolog.
func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With cria um sublogger com campos fixos.
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Zerolog devolve o logger interno caso a API direta seja necessária.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

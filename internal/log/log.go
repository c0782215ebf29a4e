package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

const envDevelopment = "development"

var (
	once   sync.Once
	logger zerolog.Logger
)

func LevelFor(env string) zerolog.Level {
	switch env {
	case envDevelopment:
		return zerolog.TraceLevel
	case "test":
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

func configureFields() {
	zerolog.DurationFieldUnit = time.Microsecond
	zerolog.ErrorFieldName = "error"
	zerolog.ErrorStackFieldName = "stack-trace"
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.TimestampFieldName = "timestamp"
}

// NewLogger builds the storefront logger on top of w with request and trace ids
// attached from the event context.
func NewLogger(w io.Writer, env string) zerolog.Logger {
	return zerolog.New(w).
		Level(LevelFor(env)).
		Hook(AttachTraceIdFromContext()).
		With().
		Timestamp().
		Caller().
		Stack().
		Int("pid", os.Getpid()).
		Logger()
}

func newRotatingFile(filepath string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath,
		MaxSize:    50,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}
}

// InitLogger writes json to a rotating file at filepath. Stdout gets the same
// events, pretty printed in development.
func InitLogger(filepath string, env string) zerolog.Logger {
	once.Do(func() {
		configureFields()

		var stdout io.Writer = os.Stdout
		if env == envDevelopment {
			stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		}
		logger = NewLogger(zerolog.MultiLevelWriter(stdout, newRotatingFile(filepath)), env)

		logger.Info().
			Str(KeyTag, "InitLogger").
			Str(KeyProcess, "InitLogger").
			Str("env", env).
			Str("file", filepath).
			Msg("initialized logger")
	})
	return logger
}

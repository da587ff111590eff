// Package logger configures the process-wide zerolog logger.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the process-wide logger; it discards output until Init is called
var Logger = zerolog.Nop()

// Config controls level, encoding and timestamps
type Config struct {
	Level        string `json:"level"`       // debug, info, warn, error
	Format       string `json:"format"`      // json or pretty
	TimeFormat   string `json:"time_format"` // defaults to RFC3339
	ReportCaller bool   `json:"report_caller"`
	// Output defaults to stderr so stdout stays free for records
	Output io.Writer `json:"-"`
}

// Init builds the logger from config and installs it as the zerolog global
func Init(config Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	if config.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: zerolog.TimeFieldFormat,
		}
	}

	builder := zerolog.New(output).Level(level).With().Timestamp()
	if config.ReportCaller {
		builder = builder.Caller()
	}

	Logger = builder.Logger()
	log.Logger = Logger
	return Logger
}

// Ctx returns the logger carried by ctx, or the disabled logger when there is none
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext attaches the process-wide logger to ctx
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}

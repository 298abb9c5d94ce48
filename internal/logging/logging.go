// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jamesprial/docker-manager-mcp/internal/config"
	"github.com/rs/zerolog"
)

// New returns a zerolog.Logger writing to w at the level named in cfg.Level.
// An empty level means info. Format "json" emits one JSON object per line;
// anything else uses the human-readable console writer.
func New(cfg config.LogConfig, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("logging: parse level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	out := w
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

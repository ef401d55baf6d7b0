package core

import (
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/encodeous/quadrant/state"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

// NewLogger builds the process logger: the console, plus the log file when
// one is configured. The returned closer releases the file.
func NewLogger(component string, cfg state.LogCfg, level slog.Level) (*slog.Logger, io.Closer, error) {
	handlers := make([]slog.Handler, 0)
	if cfg.Json {
		handlers = append(handlers, slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	} else {
		handlers = append(handlers,
			tint.NewHandler(os.Stderr, &tint.Options{
				Level:        level,
				AddSource:    false,
				CustomPrefix: component,
				ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
					if attr.Key == "time" {
						return slog.Attr{}
					}
					return attr
				},
			}))
	}

	var closer io.Closer = io.NopCloser(nil)
	if cfg.Path != "" {
		err := os.MkdirAll(path.Dir(cfg.Path), 0700)
		if err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.Path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		closer = f
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

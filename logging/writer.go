package logging

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	openWriters   []*lumberjack.Logger
	openWritersMu sync.Mutex
)

// newFileWriter returns a rotating writer for config.Director/config.FileName.
func newFileWriter(config Config) *lumberjack.Logger {
	_ = os.MkdirAll(config.Director, 0755)

	w := &lumberjack.Logger{
		Filename:   filepath.Join(config.Director, config.FileName),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
		LocalTime:  true,
	}

	openWritersMu.Lock()
	openWriters = append(openWriters, w)
	openWritersMu.Unlock()
	return w
}

// getWriteSyncer builds the sink for a config: stderr, a rotating file, or both.
// With neither enabled the logger writes nowhere.
func getWriteSyncer(config Config) zapcore.WriteSyncer {
	var syncers []zapcore.WriteSyncer
	if config.LogInTerminal {
		syncers = append(syncers, zapcore.Lock(os.Stderr))
	}
	if config.Director != "" {
		syncers = append(syncers, zapcore.AddSync(newFileWriter(config)))
	}

	switch len(syncers) {
	case 0:
		return zapcore.AddSync(discard{})
	case 1:
		return syncers[0]
	default:
		return zapcore.NewMultiWriteSyncer(syncers...)
	}
}

// CloseAllWriters closes every log file opened by NewLogger.
func CloseAllWriters() error {
	openWritersMu.Lock()
	defer openWritersMu.Unlock()

	var lastErr error
	for _, w := range openWriters {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	openWriters = nil
	return lastErr
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

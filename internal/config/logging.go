package config

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging sends the standard logger to stdout and, when LOG_FILE is
// set, to a size-rotated file. The returned writer is also used for the
// HTTP access log.
func SetupLogging(cfg LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	out := io.MultiWriter(os.Stdout, rotator)
	log.SetOutput(out)
	log.Printf("📝 Logging to %s", cfg.File)
	return out
}

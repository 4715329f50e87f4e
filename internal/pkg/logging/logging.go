// Package logging builds the process logger: console output teed into a
// daily log file.
package logging

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logFilePerm = 0o644
	logDirPerm  = 0o755
	timeLayout  = "2006-01-02 15:04:05.000"
)

// Options configures New.
type Options struct {
	// Dir receives stdout_M-D-YY.log files. Empty disables file output.
	Dir   string
	Debug bool
}

// DailyFilename returns the log file name for the day of now.
func DailyFilename(now time.Time) string {
	return "stdout_" + now.Format("1-2-06") + ".log"
}

// DailyWriter appends to the current day's file under dir, switching
// files when the date changes.
type DailyWriter struct {
	mu  sync.Mutex
	dir string
	now func() time.Time

	name string
	file *os.File
}

func NewDailyWriter(dir string) (*DailyWriter, error) {
	if err := os.MkdirAll(dir, logDirPerm); err != nil {
		return nil, err
	}
	return &DailyWriter{dir: dir, now: time.Now}, nil
}

func (w *DailyWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	name := DailyFilename(w.now())
	if w.file == nil || name != w.name {
		if w.file != nil {
			_ = w.file.Close()
		}
		f, err := os.OpenFile(filepath.Join(w.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePerm)
		if err != nil {
			w.file = nil
			return 0, err
		}
		w.file, w.name = f, name
	}
	return w.file.Write(p)
}

func (w *DailyWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// New creates a zap logger writing console-encoded entries to stdout and,
// when opts.Dir is set, to the daily log file.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Debug {
		level.SetLevel(zap.DebugLevel)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)}
	if opts.Dir != "" {
		writer, err := NewDailyWriter(opts.Dir)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(writer), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	_ = zap.RedirectStdLog(logger)
	return logger, nil
}

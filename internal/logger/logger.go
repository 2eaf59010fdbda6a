package logger

import (
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileName is the name of the rotating log file inside Options.Dir.
const LogFileName = "autotrader.log"

// Logger wraps the zap logger with additional functionality
type Logger struct {
	*zap.Logger
}

// Options configures the file sink of the logger.
type Options struct {
	// Level is a zap level name (debug, info, warn, error)
	Level string
	// Dir is the directory of the rotating log file. Empty disables the file sink.
	Dir string
	// MaxFileSize is the rotation threshold in bytes
	MaxFileSize int64
	// BackupCount is the number of rotated files to keep
	BackupCount int
}

// NewLogger creates a new logger instance with production configuration
func NewLogger() (*Logger, error) {
	config := zap.NewProductionConfig()

	// Set the output to stdout
	config.OutputPaths = []string{"stdout"}

	// Set the error output to stderr
	config.ErrorOutputPaths = []string{"stderr"}

	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zapLogger,
	}, nil
}

// NewLoggerWithOptions creates a logger that writes JSON to stdout and, when a
// directory is set, to a size-rotated file.
func NewLoggerWithOptions(opts Options) (*Logger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, err
		}

		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, LogFileName),
			MaxSize:    maxSizeMegabytes(opts.MaxFileSize),
			MaxBackups: opts.BackupCount,
			Compress:   false,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr))),
	}, nil
}

// NewNopLogger returns a logger that discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}

	return nil
}

// maxSizeMegabytes converts a byte threshold to lumberjack's megabyte unit, with a floor of 1.
func maxSizeMegabytes(bytes int64) int {
	mb := int(bytes / (1024 * 1024))
	if mb < 1 {
		return 1
	}

	return mb
}

package log

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields is a set of structured entries attached to one log line.
type Fields = logrus.Fields

var std = newStd()

func newStd() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05",
		LogFormat:       "[%time%][%lvl%]: %msg%\n",
	})
	return l
}

// SetOutput redirects all package level loggers.
func SetOutput(o io.Writer) {
	std.SetOutput(o)
}

// SetLogFormatter replaces the line formatter.
func SetLogFormatter(f logrus.Formatter) {
	std.SetFormatter(f)
}

// SetLevel sets the minimum severity that gets written.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	std.SetLevel(lvl)
}

// GetLogWriter returns a size rotated file writer configured from the log
// section of the service configuration.
func GetLogWriter() io.Writer {
	return &lumberjack.Logger{
		Filename:   viper.GetString("log.file"),
		MaxSize:    viper.GetInt("log.max_size_mb"),
		MaxBackups: viper.GetInt("log.max_backups"),
		MaxAge:     viper.GetInt("log.max_age_days"),
		Compress:   viper.GetBool("log.compress"),
	}
}

// Debug logs a message at level Debug on the standard logger.
func Debug(args ...interface{}) {
	std.Debug(args...)
}

// Info logs a message at level Info on the standard logger.
func Info(args ...interface{}) {
	std.Info(args...)
}

// Warn logs a message at level Warn on the standard logger.
func Warn(args ...interface{}) {
	std.Warn(args...)
}

// Error logs a message at level Error on the standard logger.
func Error(args ...interface{}) {
	std.Error(args...)
}

// Fatal logs a message at level Fatal on the standard logger then exits.
func Fatal(args ...interface{}) {
	std.Fatal(args...)
}

// Panic logs a message at level Panic on the standard logger.
func Panic(args ...interface{}) {
	std.Panic(args...)
}

// InfoWithFields logs a message with structured fields at level Info.
func InfoWithFields(msg string, fields Fields) {
	std.WithFields(fields).Info(msg)
}

// ErrorWithFields logs a message with structured fields at level Error.
func ErrorWithFields(msg string, fields Fields) {
	std.WithFields(fields).Error(msg)
}

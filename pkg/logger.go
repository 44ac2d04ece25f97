package warmer

import (
	"io"
	"log/syslog"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type logger struct {
	logger zerolog.Logger
	debug  bool
}

var (
	Logger *logger
	once   sync.Once
)

// InitLogger wires zerolog to stderr, optionally tee'd to the system
// logger. silent is not applied here: progress-line suppression lives in
// Observer, and the logger writes every level it is configured for.
func InitLogger(debugMode, silent, syslogMode bool) error {
	var initErr error
	once.Do(func() {
		// silent only mutes the Observer's progress printer, never
		// warnings or errors, so the logger itself always writes here.
		outputs := []io.Writer{os.Stderr}

		if syslogMode {
			w, err := newSyslogWriter()
			if err != nil {
				initErr = err
			} else {
				outputs = append(outputs, w)
			}
		}

		zerolog.TimeFieldFormat = time.RFC3339
		logLevel := zerolog.InfoLevel
		if debugMode {
			logLevel = zerolog.DebugLevel
		}

		zerologLogger := zerolog.New(zerolog.MultiLevelWriter(outputs...)).
			Level(logLevel).
			With().
			Timestamp().
			Logger()

		Logger = &logger{
			logger: zerologLogger,
			debug:  debugMode,
		}
	})
	return initErr
}

func GetLogger() *logger {
	if Logger == nil {
		panic("Logger is not initialized. Call InitLogger first.")
	}
	return Logger
}

// syslogWriter adapts zerolog's io.Writer sink to the standard library's
// log/syslog client. No ecosystem zerolog-to-syslog bridge turned up in
// the retrieved pack, so this shim is the one hand-rolled ambient piece
// (see DESIGN.md).
type syslogWriter struct {
	w *syslog.Writer
}

func newSyslogWriter() (*syslogWriter, error) {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, "warmer")
	if err != nil {
		return nil, err
	}
	return &syslogWriter{w: w}, nil
}

func (s *syslogWriter) Write(p []byte) (int, error) {
	if err := s.w.Info(string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (l *logger) Debug(msg string, fields ...any) {
	if l.debug {
		event := l.logger.Debug()
		l.addFields(event, fields...).Msg(msg)
	}
}

func (l *logger) Debugf(template string, args ...interface{}) {
	if l.debug {
		l.logger.Debug().Msgf(template, args...)
	}
}

func (l *logger) Info(msg string, fields ...any) {
	event := l.logger.Info()
	l.addFields(event, fields...).Msg(msg)
}

func (l *logger) Infof(template string, args ...interface{}) {
	l.logger.Info().Msgf(template, args...)
}

func (l *logger) Warn(msg string, fields ...any) {
	event := l.logger.Warn()
	l.addFields(event, fields...).Msg(msg)
}

func (l *logger) Warnf(template string, args ...interface{}) {
	l.logger.Warn().Msgf(template, args...)
}

func (l *logger) Error(msg string, fields ...any) {
	event := l.logger.Error()
	l.addFields(event, fields...).Msg(msg)
}

func (l *logger) Errorf(template string, args ...interface{}) {
	l.logger.Error().Msgf(template, args...)
}

func (l *logger) Fatal(msg string, fields ...any) {
	event := l.logger.Fatal()
	l.addFields(event, fields...).Msg(msg)
}

func (l *logger) Fatalf(template string, args ...interface{}) {
	l.logger.Fatal().Msgf(template, args...)
}

func (l *logger) addFields(event *zerolog.Event, fields ...any) *zerolog.Event {
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key, ok := fields[i].(string)
			if !ok {
				continue
			}
			event = event.Interface(key, fields[i+1])
		}
	}
	return event
}

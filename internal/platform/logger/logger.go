package logger

import (
	"os"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()
}

func Info(msg string, fields ...map[string]interface{}) {
	ev := log.Info()
	addFields(ev, fields)
	ev.Msg(msg)
}

func Warn(msg string, fields ...map[string]interface{}) {
	ev := log.Warn()
	addFields(ev, fields)
	ev.Msg(msg)
}

func Error(msg string, err error, fields ...map[string]interface{}) {
	ev := log.Error().Err(err)
	addFields(ev, fields)
	ev.Msg(msg)
}

func addFields(ev *zerolog.Event, fields []map[string]interface{}) {
	for _, f := range fields {
		for k, v := range f {
			ev.Interface(k, v)
		}
	}
}

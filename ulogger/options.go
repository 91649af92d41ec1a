package ulogger

import (
	"io"
	"os"

	"github.com/ordishs/gocore"
)

type Options struct {
	loggerType string
	logLevel   string
	writer     io.Writer
}

type Option func(*Options)

func DefaultOptions() *Options {
	logLevel, _ := gocore.Config().Get("logLevel", "INFO")

	return &Options{
		loggerType: "zerolog",
		logLevel:   logLevel,
		writer:     os.Stdout,
	}
}

func WithLevel(logLevel string) Option {
	return func(o *Options) {
		o.logLevel = logLevel
	}
}

func WithWriter(writer io.Writer) Option {
	return func(o *Options) {
		o.writer = writer
	}
}

func WithLoggerType(loggerType string) Option {
	return func(o *Options) {
		o.loggerType = loggerType
	}
}

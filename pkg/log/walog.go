package log

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	waLog "go.mau.fi/whatsmeow/util/log"
)

type waLogger struct {
	entry *logrus.Entry
	level logrus.Level
}

// WhatsMeow bridges whatsmeow's internal logging onto logrus. Messages below
// minLevel (DEBUG, INFO, WARN, ERROR) are dropped.
func WhatsMeow(module string, minLevel string) waLog.Logger {
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(minLevel)))
	if err != nil {
		level = logrus.WarnLevel
	}
	return &waLogger{
		entry: logger.WithField("module", module),
		level: level,
	}
}

func (l *waLogger) log(level logrus.Level, msg string, args ...interface{}) {
	if level > l.level {
		return
	}
	l.entry.Log(level, fmt.Sprintf(msg, args...))
}

func (l *waLogger) Errorf(msg string, args ...interface{}) { l.log(logrus.ErrorLevel, msg, args...) }
func (l *waLogger) Warnf(msg string, args ...interface{})  { l.log(logrus.WarnLevel, msg, args...) }
func (l *waLogger) Infof(msg string, args ...interface{})  { l.log(logrus.InfoLevel, msg, args...) }
func (l *waLogger) Debugf(msg string, args ...interface{}) { l.log(logrus.DebugLevel, msg, args...) }

func (l *waLogger) Sub(module string) waLog.Logger {
	current, _ := l.entry.Data["module"].(string)
	if current != "" {
		module = current + "/" + module
	}
	return &waLogger{
		entry: logger.WithField("module", module),
		level: l.level,
	}
}

// Copyright 2026 The bears Authors
// This file is part of the bears library.
//
// The bears library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The bears library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the bears library. If not, see <http://www.gnu.org/licenses/>.

// Package wlog adapts the node-wide module logger used throughout the
// klaytn tree (log.NewModuleLogger(...), logger.Warn("msg", "k", v, ...))
// onto a zap backend, since the module logger package itself sits outside
// the retrieved file set.
package wlog

import (
	"go.uber.org/zap"
)

// Logger mirrors the call shape of klaytn's module logger: a message
// followed by alternating key/value pairs.
type Logger struct {
	name string
	s    *zap.SugaredLogger
}

var base = newBase()

func newBase() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	return l
}

// NewModuleLogger returns a Logger scoped to the given module name, the way
// klaytn's log.NewModuleLogger(log.Common) does.
func NewModuleLogger(module string) *Logger {
	return &Logger{name: module, s: base.Sugar().With("module", module)}
}

func (l *Logger) Trace(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l *Logger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }

// Crit logs at the highest severity and terminates the process, matching
// klaytn's logger.Crit used for unrecoverable startup errors.
func (l *Logger) Crit(msg string, kv ...interface{}) {
	l.s.Fatalw(msg, kv...)
}

// Copyright 2022 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package logging sets up the process-wide logr loggers, one per log target, with
each target's verbosity controlled by a Filter. Log records are rendered by a
log/slog text handler.
*/
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-logr/logr"
)

// TargetKey is the attribute key naming the log target of each record.
const TargetKey = "target"

// SeverityKey marks V(0) records as warnings when its value is Warning. logr
// has no warning level of its own, so Warn adds this key/value pair.
const (
	SeverityKey = "severity"
	Warning     = "warn"
)

// Warn logs a warning: a V(0) record that still passes a "warn" filter level,
// rendered with level=WARN.
func Warn(log logr.Logger, msg string, keysAndValues ...any) {
	log.Info(msg, append([]any{SeverityKey, Warning}, keysAndValues...)...)
}

// Loggers hands out loggers writing to the same output, but with individual
// per-target verbosity.
type Loggers struct {
	w      io.Writer
	filter Filter
}

// New returns a Loggers writing to w and filtering according to filter.
func New(w io.Writer, filter Filter) *Loggers {
	return &Loggers{w: w, filter: filter}
}

// Filter returns the filter in use.
func (l *Loggers) Filter() Filter {
	return l.filter
}

// For returns the logger for the named target.
func (l *Loggers) For(target string) logr.Logger {
	level := l.filter.Level(target)
	if level == LevelOff {
		return logr.Discard()
	}
	h := slog.NewTextHandler(l.w, &slog.HandlerOptions{ReplaceAttr: levelNamer})
	return logr.FromSlogHandler(levelHandler{
		Handler: h.WithAttrs([]slog.Attr{slog.String(TargetKey, target)}),
		level:   level,
	})
}

// levelHandler enforces the target's level in Handle too, as logr hands Error
// records to Handle without asking Enabled first. It also turns V(0) records
// carrying the warning severity into slog warnings.
type levelHandler struct {
	slog.Handler
	level Level
}

func (h levelHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.level == LevelWarn {
		// warnings are V(0) records until Handle tells them apart.
		return level >= slog.LevelInfo
	}
	return level >= h.level.slogLevel()
}

func (h levelHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level == slog.LevelInfo && isWarning(r) {
		r = asWarning(r)
	}
	if r.Level < h.level.slogLevel() {
		return nil
	}
	return h.Handler.Handle(ctx, r)
}

func (h levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return levelHandler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h levelHandler) WithGroup(name string) slog.Handler {
	return levelHandler{Handler: h.Handler.WithGroup(name), level: h.level}
}

func isWarning(r slog.Record) bool {
	warning := false
	r.Attrs(func(a slog.Attr) bool {
		warning = a.Key == SeverityKey && a.Value.String() == Warning
		return !warning
	})
	return warning
}

// asWarning returns a copy of the record at warning level, without the
// severity marker.
func asWarning(r slog.Record) slog.Record {
	w := slog.NewRecord(r.Time, slog.LevelWarn, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key != SeverityKey {
			w.AddAttrs(a)
		}
		return true
	})
	return w
}

// levelNamer renders logr's V(1) and V(2) as DEBUG and TRACE instead of slog's
// "DEBUG+3" and "DEBUG+2".
func levelNamer(groups []string, a slog.Attr) slog.Attr {
	if len(groups) != 0 || a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok || level >= slog.LevelInfo {
		return a
	}
	if level <= -2 {
		return slog.String(slog.LevelKey, "TRACE")
	}
	return slog.String(slog.LevelKey, "DEBUG")
}

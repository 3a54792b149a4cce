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

package logging

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// DefaultFilter is used whenever no filter has been configured at all.
const DefaultFilter = "spashell=debug,http=debug"

// Level is a verbosity threshold of a log target.
type Level int

const (
	LevelOff Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var levelNames = map[string]Level{
	"off":   LevelOff,
	"error": LevelError,
	"warn":  LevelWarn,
	"info":  LevelInfo,
	"debug": LevelDebug,
	"trace": LevelTrace,
}

// String returns the filter syntax name of the level.
func (l Level) String() string {
	for name, level := range levelNames {
		if level == l {
			return name
		}
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// slogLevel returns the minimum slog level to let through. logr's V(n) maps
// onto slog.Level(-n), so debug is V(1) and trace is V(2).
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelInfo:
		return slog.LevelInfo
	case LevelDebug:
		return slog.Level(-1)
	case LevelTrace:
		return slog.Level(-2)
	}
	return slog.Level(1 << 16) // off: nothing, not even errors.
}

// Filter maps log targets to their verbosity levels. The zero value lets only
// errors pass.
type Filter struct {
	global  Level
	targets map[string]Level
}

// ParseFilter parses a comma-separated list of directives, where a directive
// is either a bare level setting the global default, or "target=level". Target
// names are dotted, so a directive for "http" also applies to "http.assets"
// unless there's a more specific directive.
//
// Invalid directives are skipped; they are reported in the returned error,
// while the returned Filter still carries all valid directives.
func ParseFilter(s string) (Filter, error) {
	f := Filter{global: LevelError, targets: map[string]Level{}}
	var errs []error
	for _, directive := range strings.Split(s, ",") {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}
		target, levelName, hasTarget := strings.Cut(directive, "=")
		if !hasTarget {
			levelName, target = target, ""
		}
		target = strings.TrimSpace(target)
		level, ok := levelNames[strings.ToLower(strings.TrimSpace(levelName))]
		if !ok {
			errs = append(errs, fmt.Errorf("invalid log directive %q: unknown level %q",
				directive, levelName))
			continue
		}
		if !hasTarget {
			f.global = level
			continue
		}
		if target == "" {
			errs = append(errs, fmt.Errorf("invalid log directive %q: empty target", directive))
			continue
		}
		f.targets[target] = level
	}
	return f, errors.Join(errs...)
}

// Level returns the verbosity level for the specified target.
func (f Filter) Level(target string) Level {
	for {
		if level, ok := f.targets[target]; ok {
			return level
		}
		dot := strings.LastIndexByte(target, '.')
		if dot < 0 {
			break
		}
		target = target[:dot]
	}
	if f.targets == nil {
		return LevelError
	}
	return f.global
}

// String renders the filter in its parseable form.
func (f Filter) String() string {
	directives := make([]string, 0, len(f.targets))
	for target, level := range f.targets {
		directives = append(directives, target+"="+level.String())
	}
	sort.Strings(directives)
	return strings.Join(append([]string{f.Level("").String()}, directives...), ",")
}

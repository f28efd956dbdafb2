// Copyright 2024 The netsim Authors
// This file is part of netsim.
//
// netsim is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// netsim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with netsim. If not, see <http://www.gnu.org/licenses/>.

// Package log is a small leveled, structured logger: Warn/Error/Info/Debug
// take a message followed by alternating key/value pairs. Output is
// colorized when writing to a terminal.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level orders log verbosity, most severe first.
type Level int

const (
	LvlError Level = iota
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

var levelNames = map[Level]string{
	LvlError: "ERROR",
	LvlWarn:  "WARN ",
	LvlInfo:  "INFO ",
	LvlDebug: "DEBUG",
	LvlTrace: "TRACE",
}

var levelColor = map[Level]*color.Color{
	LvlError: color.New(color.FgRed, color.Bold),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgWhite),
}

// Logger writes leveled records to an io.Writer.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	color  bool
	level  Level
	ctx    []interface{}
}

var root = New(os.Stderr)

// New builds a Logger writing to w, auto-detecting color support when w is
// a *os.File attached to a terminal.
func New(w io.Writer) *Logger {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		if useColor {
			w = colorable.NewColorable(f)
		}
	}
	return &Logger{out: w, color: useColor, level: LvlInfo}
}

// SetLevel changes the root logger's verbosity floor.
func SetLevel(l Level) { root.SetLevel(l) }

func (l *Logger) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = lvl
}

// With returns a child logger that always includes the given key/value
// pairs, for attaching e.g. a peer id to every line a peer's goroutines log.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{out: l.out, color: l.color, level: l.level, ctx: append(append([]interface{}{}, l.ctx...), kv...)}
}

func (l *Logger) log(lvl Level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lvl > l.level {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	var line string
	if l.color {
		line = levelColor[lvl].Sprintf("%s[%s] %s", levelNames[lvl], ts, msg)
	} else {
		line = fmt.Sprintf("%s[%s] %s", levelNames[lvl], ts, msg)
	}
	all := append(append([]interface{}{}, l.ctx...), kv...)
	for i := 0; i+1 < len(all); i += 2 {
		line += fmt.Sprintf(" %v=%v", all[i], all[i+1])
	}
	if lvl == LvlDebug || lvl == LvlTrace {
		if call := stack.Caller(2); call != nil {
			line += fmt.Sprintf(" caller=%n:%d", call, call)
		}
	}
	fmt.Fprintln(l.out, line)
}

func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LvlError, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(LvlWarn, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(LvlInfo, msg, kv) }
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LvlDebug, msg, kv) }
func (l *Logger) Trace(msg string, kv ...interface{}) { l.log(LvlTrace, msg, kv) }

// Package-level helpers delegate to the root logger, for call sites that
// don't hold their own *Logger.
func Error(msg string, kv ...interface{}) { root.Error(msg, kv...) }
func Warn(msg string, kv ...interface{})  { root.Warn(msg, kv...) }
func Info(msg string, kv ...interface{})  { root.Info(msg, kv...) }
func Debug(msg string, kv ...interface{}) { root.Debug(msg, kv...) }
func Trace(msg string, kv ...interface{}) { root.Trace(msg, kv...) }
func With(kv ...interface{}) *Logger      { return root.With(kv...) }

// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package console prints prefixed, colored progress lines for the
// installer and CLI.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gookit/color"
)

var (
	headerStyle  = color.New(color.FgGreen, color.OpBold)
	infoStyle    = color.New(color.FgBlue)
	successStyle = color.New(color.FgGreen)
	warnStyle    = color.New(color.FgYellow, color.OpBold)
	errorStyle   = color.New(color.FgRed)
	debugStyle   = color.New(color.FgCyan)
	stepStyle    = color.New(color.FgMagenta)
	targetStyle  = color.New(color.FgYellow)
)

// Logger writes human-facing lines to an output stream.
// It is safe for concurrent use.
type Logger struct {
	mu      sync.Mutex
	w       io.Writer
	color   bool
	verbose bool
}

// Option configures a Logger.
type Option func(*Logger)

// WithColor forces color on or off.
func WithColor(on bool) Option {
	return func(l *Logger) {
		l.color = on
	}
}

// WithVerbose enables Debug output.
func WithVerbose(on bool) Option {
	return func(l *Logger) {
		l.verbose = on
	}
}

// New returns a Logger writing to w. Color defaults to on only when w is
// one of the standard streams and the environment supports color.
func New(w io.Writer, opts ...Option) *Logger {
	l := &Logger{w: w, color: color.IsConsole(w) && color.SupportColor()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discard returns a Logger that drops all output.
func Discard() *Logger {
	return New(io.Discard, WithColor(false))
}

// Verbose reports whether Debug output is enabled.
func (l *Logger) Verbose() bool {
	return l.verbose
}

func (l *Logger) paint(s color.Style, text string) string {
	if !l.color {
		return text
	}
	return s.Sprint(text)
}

func (l *Logger) println(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, line)
}

func (l *Logger) prefixed(s color.Style, prefix, format string, args []any) {
	l.println(l.paint(s, prefix) + " " + fmt.Sprintf(format, args...))
}

// Header prints a banner with title.
func (l *Logger) Header(title string) {
	bar := strings.Repeat("=", 50)
	l.println("")
	l.println(l.paint(headerStyle, bar))
	l.println(l.paint(headerStyle, "  "+title))
	l.println(l.paint(headerStyle, bar))
	l.println("")
}

func (l *Logger) Info(format string, args ...any) {
	l.prefixed(infoStyle, "→", format, args)
}

func (l *Logger) Success(format string, args ...any) {
	l.prefixed(successStyle, "✓", format, args)
}

func (l *Logger) Warn(format string, args ...any) {
	l.prefixed(warnStyle, "!", format, args)
}

func (l *Logger) Error(format string, args ...any) {
	l.prefixed(errorStyle, "✗", format, args)
}

// Debug prints only in verbose mode.
func (l *Logger) Debug(format string, args ...any) {
	if l.verbose {
		l.prefixed(debugStyle, "·", format, args)
	}
}

// Step prints a numbered step such as "[2/5] message".
func (l *Logger) Step(n, total int, format string, args ...any) {
	l.prefixed(stepStyle, fmt.Sprintf("[%d/%d]", n, total), format, args)
}

// Target prints an indented target line with an optional status.
func (l *Logger) Target(name, status string) {
	line := "  → " + l.paint(targetStyle, name)
	if status != "" {
		line += " " + l.paint(debugStyle, "("+status+")")
	}
	l.println(line)
}

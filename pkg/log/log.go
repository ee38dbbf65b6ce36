// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fieldIndent = 4  // spaces to indent field entries
	nameWidth   = 12 // Base width for field name
)

// 🎯 SkillOperation represents a skill resync or download for logging
type SkillOperation struct {
	Name       string        // Skill name
	SourceURL  string        // Tracked source repository URL
	Provenance string        // Where the returned data came from (source/cache)
	Stars      int           // Star count after the operation
	HeatScore  float64       // Heat score after the operation
	Duration   time.Duration // How long the operation took
	Fallback   bool          // Whether the cache fallback was taken
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 LogSkillOperation logs a completed skill operation
func (l *Logger) LogSkillOperation(ctx context.Context, op SkillOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Determine symbol and color
	symbol := '✓'
	symbolColor := color.FgGreen
	if op.Fallback {
		symbol = '⟳'
		symbolColor = color.FgYellow
	}

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(symbolColor).Sprint(string(symbol)),
		color.New(color.Bold).Sprint(op.Name),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgCyan).Sprint(op.Provenance))

	l.field("stars", fmt.Sprintf("%d", op.Stars))
	l.field("heat", fmt.Sprintf("%.2f", op.HeatScore))
	l.field("took", op.Duration.Round(time.Millisecond).String())

	// Log to zerolog
	l.zlog.Info().
		Str("skill", op.Name).
		Str("source_url", op.SourceURL).
		Str("provenance", op.Provenance).
		Int("stars", op.Stars).
		Float64("heat_score", op.HeatScore).
		Dur("duration", op.Duration).
		Bool("fallback", op.Fallback).
		Msg("skill operation")
}

// 📝 field prints an indented name/value line
func (l *Logger) field(name, value string) {
	fmt.Fprintf(l.console, "%s%s %s\n",
		fmt.Sprintf("%*s", fieldIndent, ""),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", nameWidth, name)),
		value)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	nameText := color.New(color.Bold, color.FgCyan).Sprint("skillsync")
	fmt.Fprintf(l.console, "\n%s %s\n\n", nameText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logger provides the structured logging surface used by
// connection, query and supervisor: a thin Logger interface over
// github.com/sirupsen/logrus, carrying fields and a level gate, used to
// report protocol lifecycle events: a completed handshake, a connection
// turning broken, a launched server. Answers themselves are never logged.
// The query package accepts a Logger but writes no entries of its own:
// query start, timeouts, cancellations and heartbeats are not logged.
package logger

import (
	"github.com/sirupsen/logrus"
)

// Fields attaches structured key/value context to a log entry.
type Fields map[string]interface{}

// Logger is the logging surface consumed by the core packages.
type Logger interface {
	WithFields(f Fields) Logger
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
}

type golog struct {
	entry *logrus.Entry
}

// New wraps a *logrus.Logger into a Logger. Pass logrus.StandardLogger()
// for a default stderr text logger, or a caller-configured instance to
// route into the host application's own logging pipeline.
func New(base *logrus.Logger) Logger {
	if base == nil {
		base = logrus.StandardLogger()
	}
	return &golog{entry: logrus.NewEntry(base)}
}

// Discard returns a Logger that drops everything, for callers that don't
// want protocol lifecycle logging at all.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return New(l)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func (g *golog) WithFields(f Fields) Logger {
	return &golog{entry: g.entry.WithFields(logrus.Fields(f))}
}

func (g *golog) Debug(msg string) { g.entry.Debug(msg) }
func (g *golog) Info(msg string)  { g.entry.Info(msg) }
func (g *golog) Warn(msg string)  { g.entry.Warn(msg) }

func (g *golog) Error(msg string, err error) {
	if err != nil {
		g.entry.WithError(err).Error(msg)
		return
	}
	g.entry.Error(msg)
}

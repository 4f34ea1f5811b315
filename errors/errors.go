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

// Package errors implements the client's error taxonomy: one Error
// interface, carrying a Kind and an optional remote term, sufficient for a
// caller to distinguish remote exceptions, cancellations, timeouts,
// protocol faults, and connection loss without string-matching messages.
package errors

import (
	"fmt"
	"runtime"

	prlterm "github/sabouaram/prologmqi/term"
)

// Kind classifies an Error. Kinds mirror the taxonomy in the design: one
// base kind plus the specialized ones callers are expected to switch on.
type Kind uint8

const (
	// KindGeneric is the base PrologError: a remote exception whose
	// functor did not match any of the specialized kinds below.
	KindGeneric Kind = iota
	KindLaunch
	KindConnectionFailed
	KindQueryTimeout
	KindQueryCancelled
	KindNoQuery
	KindResultNotAvailable
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "PrologError"
	case KindLaunch:
		return "PrologLaunchError"
	case KindConnectionFailed:
		return "PrologConnectionFailedError"
	case KindQueryTimeout:
		return "PrologQueryTimeoutError"
	case KindQueryCancelled:
		return "PrologQueryCancelledError"
	case KindNoQuery:
		return "PrologNoQueryError"
	case KindResultNotAvailable:
		return "PrologResultNotAvailableError"
	case KindConfig:
		return "ConfigError"
	default:
		return "PrologError"
	}
}

// Error is the interface every error raised by this module satisfies.
type Error interface {
	error

	// Kind returns the taxonomy classification of this error.
	Kind() Kind
	// Term returns the remote term carried by this error, if any (only
	// populated for errors built by FromTerm from a server-supplied term:
	// an exception(...) envelope or a rejected handshake reply).
	Term() (prlterm.Term, bool)
	// Trace returns "file:line" captured at construction, for diagnostics.
	Trace() string
	// Unwrap exposes the wrapped cause, if any, to errors.Is / errors.As.
	Unwrap() error
}

type prologError struct {
	kind   Kind
	msg    string
	term   *prlterm.Term
	cause  error
	trace  string
}

func (e *prologError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	if e.term != nil {
		return fmt.Sprintf("%s: %s", e.kind, prlterm.Encode(*e.term))
	}
	return e.kind.String()
}

func (e *prologError) Kind() Kind { return e.kind }

func (e *prologError) Term() (prlterm.Term, bool) {
	if e.term == nil {
		return prlterm.Term{}, false
	}
	return *e.term, true
}

func (e *prologError) Trace() string { return e.trace }

func (e *prologError) Unwrap() error { return e.cause }

func trace() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// New builds a plain Error of the given kind with a message, no remote term.
func New(kind Kind, msg string) Error {
	return &prologError{kind: kind, msg: msg, trace: trace()}
}

// Wrap builds an Error of the given kind around a lower-level cause (a
// transport or I/O error, typically).
func Wrap(kind Kind, cause error) Error {
	if cause == nil {
		return New(kind, "")
	}
	return &prologError{kind: kind, msg: fmt.Sprintf("%s: %v", kind, cause), cause: cause, trace: trace()}
}

// FromTerm builds an Error carrying the server-supplied exception term,
// classifying it per Kind via ClassifyFunctor.
func FromTerm(t prlterm.Term) Error {
	kind := ClassifyFunctor(t.Functor())
	return &prologError{kind: kind, term: &t, trace: trace()}
}

// ClassifyFunctor maps a remote exception's top-level functor to a Kind,
// per the RemoteError subkind rules: time_limit_exceeded, cancel_goal,
// no_query and connection_failed map onto dedicated kinds; every other
// functor (syntax_error, existence_error and unknownCommand included)
// surfaces as KindGeneric, with IsOfKind still able to discriminate by
// functor via Term().
func ClassifyFunctor(functor string) Kind {
	switch functor {
	case "time_limit_exceeded":
		return KindQueryTimeout
	case "cancel_goal":
		return KindQueryCancelled
	case "no_query":
		return KindNoQuery
	case "connection_failed":
		return KindConnectionFailed
	default:
		return KindGeneric
	}
}

// IsOfKind reports whether err carries a remote term whose functor matches
// name (spec.md §3 RemoteError.is_of_kind). Known subkinds: syntax_error,
// time_limit_exceeded, cancel_goal, existence_error, unknownCommand,
// no_query, connection_failed.
func IsOfKind(err error, name string) bool {
	pe, ok := err.(Error)
	if !ok {
		return false
	}
	t, ok := pe.Term()
	if !ok {
		return false
	}
	return t.Functor() == name
}

// NewLaunchError reports a failure to start, hand off port/password from,
// or complete the handshake with a spawned server process.
func NewLaunchError(msg string, cause error) Error {
	if cause != nil {
		return Wrap(KindLaunch, cause)
	}
	return New(KindLaunch, msg)
}

// NewConnectionFailedError reports a transport failure during a
// transaction; the caller's Connection moves to Broken.
func NewConnectionFailedError(cause error) Error {
	return Wrap(KindConnectionFailed, cause)
}

// NewNoQueryError reports an illegal Query Channel state transition.
func NewNoQueryError(msg string) Error {
	return New(KindNoQuery, msg)
}

// NewResultNotAvailableError reports that query_async_result(wait=0) found
// no buffered answer.
func NewResultNotAvailableError() Error {
	return New(KindResultNotAvailable, "no result available without blocking")
}

// NewConfigError reports a SupervisorConfig construction-time validation
// failure.
func NewConfigError(msg string) Error {
	return New(KindConfig, msg)
}

// IsResultNotAvailable reports whether err is a PrologResultNotAvailableError
// — the one kind a non-blocking peek is expected to return rather than
// treating as a broken Connection.
func IsResultNotAvailable(err error) bool {
	pe, ok := err.(Error)
	return ok && pe.Kind() == KindResultNotAvailable
}

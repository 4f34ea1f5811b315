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

// Package query implements the Query Channel state machine: the contract
// surface callers submit goals through. A Channel wraps one Connection and
// accepts at most one outstanding query at a time, synchronous or
// asynchronous, with heartbeats consumed transparently along the way.
package query

import (
	"fmt"
	"strconv"
	"time"

	prlconn "github/sabouaram/prologmqi/connection"
	prlerr "github/sabouaram/prologmqi/errors"
	prlframe "github/sabouaram/prologmqi/frame"
	"github/sabouaram/prologmqi/logger"
	"github/sabouaram/prologmqi/metrics"
)

// state is the Query Channel's internal position in the lifecycle from the
// data model's ConnectionState (Idle/SyncPending collapse into Idle here,
// since a synchronous Query blocks the caller for its whole duration and
// returns straight to Idle — there is no externally observable
// SyncPending).
type state uint8

const (
	stateIdle state = iota
	stateAsyncPending
	stateAsyncDrained
	stateClosed
	stateBroken
)

// nonBlockingPeekDeadline bounds a query_async_result(wait=0) read so it can
// never hang even if the server does not honor W=0 promptly; it must stay
// well under any realistic heartbeat interval.
const nonBlockingPeekDeadline = 20 * time.Millisecond

// Channel is the per-Connection query state machine. Not safe for
// concurrent use by more than one caller at a time — spec.md §5 makes that
// the caller's responsibility, same as the Connection underneath it.
type Channel struct {
	conn    *prlconn.Connection
	log     logger.Logger
	metrics *metrics.Collector

	state          state
	findAll        bool
	cancelled      bool
	heartbeatCount int
}

// New wraps conn in a fresh Channel, starting in the Idle state.
func New(conn *prlconn.Connection, log logger.Logger, mc *metrics.Collector) *Channel {
	if log == nil {
		log = logger.Discard()
	}
	return &Channel{conn: conn, log: log, metrics: mc}
}

// HeartbeatCount returns the number of heartbeat markers consumed so far on
// this Channel's Connection.
func (ch *Channel) HeartbeatCount() int { return ch.heartbeatCount }

// Query submits goal synchronously and blocks until a terminal envelope
// arrives, consuming any interleaved heartbeats. timeoutSeconds nil means
// "use the server's configured default".
func (ch *Channel) Query(goal string, timeoutSeconds *float64) (Answer, error) {
	if ch.state != stateIdle {
		return Answer{}, ch.illegalTransition()
	}

	msg := fmt.Sprintf("run(%s,%s).", goal, formatTimeout(timeoutSeconds))
	if err := ch.conn.Send(msg); err != nil {
		ch.state = stateBroken
		ch.metrics.RecordOutcome(metrics.OutcomeFailure)
		return Answer{}, err
	}

	env, err := ch.receiveEnvelope()
	if err != nil {
		ch.state = stateBroken
		ch.metrics.RecordOutcome(metrics.OutcomeFailure)
		return Answer{}, err
	}

	switch env.kind {
	case envelopeFalse:
		ch.metrics.RecordOutcome(metrics.OutcomeSuccess)
		return None(), nil
	case envelopeTrue:
		ch.metrics.RecordOutcome(metrics.OutcomeSuccess)
		return WithBindings(env.bindings), nil
	default: // envelopeException
		outcome, terr := ch.classifyException(env)
		ch.metrics.RecordOutcome(outcome)
		return Answer{}, terr
	}
}

// QueryAsync submits goal asynchronously. From Idle it simply submits; from
// an already-pending AsyncPending it cancels the outstanding query first,
// then submits the new one, per the at-most-one-pending rule (spec.md §8).
func (ch *Channel) QueryAsync(goal string, timeoutSeconds *float64, findAll bool) error {
	switch ch.state {
	case stateIdle:
	case stateAsyncPending:
		if !ch.cancelled {
			if err := ch.conn.Send("cancel_async."); err != nil {
				ch.state = stateBroken
				return err
			}
		}
	default:
		return ch.illegalTransition()
	}

	msg := fmt.Sprintf("run_async(%s,%s,%s).", goal, formatTimeout(timeoutSeconds), strconv.FormatBool(findAll))
	if err := ch.conn.Send(msg); err != nil {
		ch.state = stateBroken
		return err
	}

	ch.state = stateAsyncPending
	ch.findAll = findAll
	ch.cancelled = false
	return nil
}

// QueryAsyncResult asks for the next buffered answer of the pending async
// query. waitSeconds nil blocks indefinitely; 0 performs a non-blocking
// peek and raises PrologResultNotAvailableError if nothing is buffered yet.
func (ch *Channel) QueryAsyncResult(waitSeconds *float64) (Answer, error) {
	if ch.state != stateAsyncPending {
		return Answer{}, ch.illegalTransition()
	}

	msg := fmt.Sprintf("async_result(%s).", formatTimeout(waitSeconds))
	if err := ch.conn.Send(msg); err != nil {
		ch.state = stateBroken
		return Answer{}, err
	}

	var (
		env envelope
		err error
	)
	if waitSeconds != nil && *waitSeconds == 0 {
		env, err = ch.receiveEnvelopeDeadline(nonBlockingPeekDeadline)
	} else {
		env, err = ch.receiveEnvelope()
	}
	if err != nil {
		if prlerr.IsResultNotAvailable(err) {
			return Answer{}, err
		}
		ch.state = stateBroken
		return Answer{}, err
	}

	switch env.kind {
	case envelopeFalse:
		ch.state = stateAsyncDrained
		return None(), nil
	case envelopeTrue:
		answer := WithBindings(env.bindings)
		if ch.findAll {
			ch.state = stateAsyncDrained
		}
		return answer, nil
	default: // envelopeException
		ch.state = stateAsyncDrained
		_, terr := ch.classifyException(env)
		return Answer{}, terr
	}
}

// CancelQueryAsync sends the out-of-band cancel control frame for the
// pending async query. Cancelling twice, or with nothing pending, is a
// programmer error raising PrologNoQueryError (spec.md §4.4).
func (ch *Channel) CancelQueryAsync() error {
	if ch.state != stateAsyncPending || ch.cancelled {
		return ch.illegalTransition()
	}
	if err := ch.conn.Send("cancel_async."); err != nil {
		ch.state = stateBroken
		return err
	}
	ch.cancelled = true
	return nil
}

// Close releases the Channel: best-effort cancel of any pending async
// query, then a best-effort close. protocol message, then an
// unconditional socket shutdown. Safe to call more than once.
func (ch *Channel) Close() error {
	if ch.state == stateClosed {
		return nil
	}
	if ch.state == stateAsyncPending && !ch.cancelled {
		_ = ch.conn.Send("cancel_async.")
	}
	_ = ch.conn.Send("close.")
	ch.state = stateClosed
	return ch.conn.Close()
}

func (ch *Channel) illegalTransition() error {
	return prlerr.NewNoQueryError(fmt.Sprintf("query: illegal operation in state %d", ch.state))
}

func (ch *Channel) classifyException(env envelope) (string, error) {
	terr := prlerr.FromTerm(env.inner)
	switch terr.Kind() {
	case prlerr.KindQueryTimeout:
		return metrics.OutcomeTimeout, terr
	case prlerr.KindQueryCancelled:
		return metrics.OutcomeCancelled, terr
	case prlerr.KindConnectionFailed:
		ch.state = stateBroken
		ch.conn.MarkBroken(terr)
		return metrics.OutcomeFailure, terr
	default:
		return metrics.OutcomeFailure, terr
	}
}

// receiveEnvelope reads frames until a non-heartbeat envelope arrives,
// counting every heartbeat consumed along the way.
func (ch *Channel) receiveEnvelope() (envelope, error) {
	for {
		payload, err := ch.conn.Receive()
		if err != nil {
			return envelope{}, err
		}
		if prlframe.IsHeartbeat(payload) {
			ch.heartbeatCount++
			ch.metrics.RecordHeartbeat()
			continue
		}
		return decodeEnvelope(payload)
	}
}

// receiveEnvelopeDeadline behaves like receiveEnvelope but bounds every
// individual read by d, translating a timeout into
// PrologResultNotAvailableError rather than blocking forever — the
// non-blocking peek semantics query_async_result(wait=0) needs.
func (ch *Channel) receiveEnvelopeDeadline(d time.Duration) (envelope, error) {
	for {
		payload, err := ch.conn.ReceiveTimeout(d)
		if err != nil {
			return envelope{}, err
		}
		if prlframe.IsHeartbeat(payload) {
			ch.heartbeatCount++
			ch.metrics.RecordHeartbeat()
			continue
		}
		return decodeEnvelope(payload)
	}
}

func formatTimeout(seconds *float64) string {
	if seconds == nil {
		return "null"
	}
	return strconv.FormatFloat(*seconds, 'g', -1, 64)
}

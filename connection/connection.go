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

// Package connection owns one socket to the query evaluation server: the
// handshake that authenticates it and records the server's thread ids, and
// the low-level frame send/receive primitives the query state machine
// drives. A Connection is single-threaded — only one caller may have an
// operation outstanding on it at a time (spec.md §5).
package connection

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	prlcfg "github/sabouaram/prologmqi/config"
	prlerr "github/sabouaram/prologmqi/errors"
	prlframe "github/sabouaram/prologmqi/frame"
	"github/sabouaram/prologmqi/logger"
	prlterm "github/sabouaram/prologmqi/term"
)

// Connection is one socket to the server, past the handshake.
type Connection struct {
	conn   net.Conn
	reader *bufio.Reader
	log    logger.Logger

	broken atomic.Bool

	mu             sync.Mutex
	goalThreadID   string
	commThreadID   string
}

// Dial opens a stream socket to ep, sends the password handshake frame,
// and records the server's thread(GoalId, CommId) reply. On any failure
// the socket is closed and a PrologConnectionFailedError is returned —
// per spec.md §4.3, a failed handshake is fatal, not retryable.
func Dial(ep prlcfg.Endpoint, password string, log logger.Logger) (*Connection, error) {
	if log == nil {
		log = logger.Discard()
	}

	var (
		conn net.Conn
		err  error
	)
	switch ep.Kind {
	case prlcfg.EndpointTCPLoopback:
		conn, err = net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", ep.Port))
	case prlcfg.EndpointLocalSocket:
		conn, err = net.Dial("unix", ep.Path)
	default:
		return nil, prlerr.NewConnectionFailedError(fmt.Errorf("connection: unknown endpoint kind"))
	}
	if err != nil {
		return nil, prlerr.NewConnectionFailedError(err)
	}

	c := &Connection{
		conn:   conn,
		reader: bufio.NewReader(conn),
		log:    log,
	}

	if err := c.handshake(password); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return c, nil
}

func (c *Connection) handshake(password string) error {
	if err := prlframe.WriteString(c.conn, password+"."); err != nil {
		c.MarkBroken(err)
		return prlerr.NewConnectionFailedError(err)
	}

	payload, err := prlframe.Read(c.reader)
	if err != nil {
		c.MarkBroken(err)
		return prlerr.NewConnectionFailedError(err)
	}

	reply, err := prlterm.Decode(payload)
	if err != nil {
		c.MarkBroken(err)
		return prlerr.NewConnectionFailedError(err)
	}

	if reply.Kind() == prlterm.KindCompound && reply.Functor() == "thread" && reply.Arity() == 2 {
		c.mu.Lock()
		c.goalThreadID = prlterm.Encode(reply.Args()[0])
		c.commThreadID = prlterm.Encode(reply.Args()[1])
		c.mu.Unlock()
		c.log.WithFields(logger.Fields{
			"goal_thread_id": c.goalThreadID,
			"comm_thread_id": c.commThreadID,
		}).Info("handshake succeeded")
		return nil
	}

	c.MarkBroken(nil)
	return prlerr.FromTerm(prlterm.Compound("connection_failed", reply))
}

// Send writes one frame containing payload (without the trailing '.' the
// caller is expected to have already appended to the logic-term text).
func (c *Connection) Send(payload string) error {
	if c.IsBroken() {
		return prlerr.NewConnectionFailedError(fmt.Errorf("connection: already broken"))
	}
	if err := prlframe.WriteString(c.conn, payload); err != nil {
		c.MarkBroken(err)
		return prlerr.NewConnectionFailedError(err)
	}
	return nil
}

// Receive blocks until one full frame has arrived.
func (c *Connection) Receive() ([]byte, error) {
	payload, err := prlframe.Read(c.reader)
	if err != nil {
		c.MarkBroken(err)
		return nil, prlerr.NewConnectionFailedError(err)
	}
	return payload, nil
}

// ReceiveTimeout behaves like Receive but fails with
// PrologResultNotAvailableError (not PrologConnectionFailedError) if no
// frame arrives within d — the non-blocking peek semantics
// query_async_result(wait=0) needs.
//
// It never runs frame.Read's header scan under a deadline: ReadString
// advances the bufio.Reader's position as it consumes bytes, and a
// deadline firing mid-header would leave those bytes already consumed
// with no way to push them back, permanently desyncing the frame stream.
// Instead it bounds a Peek(1) by the deadline — Peek never advances the
// read position, so a timeout there is provably zero bytes consumed —
// and only starts the real, deadline-free frame.Read once at least one
// byte is known to be buffered.
func (c *Connection) ReceiveTimeout(d time.Duration) ([]byte, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(d)); err != nil {
		return nil, prlerr.NewConnectionFailedError(err)
	}
	_, peekErr := c.reader.Peek(1)
	_ = c.conn.SetReadDeadline(time.Time{})
	if peekErr != nil {
		if ne, ok := peekErr.(net.Error); ok && ne.Timeout() {
			return nil, prlerr.NewResultNotAvailableError()
		}
		c.MarkBroken(peekErr)
		return nil, prlerr.NewConnectionFailedError(peekErr)
	}

	payload, err := prlframe.Read(c.reader)
	if err != nil {
		c.MarkBroken(err)
		return nil, prlerr.NewConnectionFailedError(err)
	}
	return payload, nil
}

// MarkBroken flips the connection into the Broken state. Safe to call
// more than once; subsequent calls are no-ops.
func (c *Connection) MarkBroken(cause error) {
	if c.broken.CompareAndSwap(false, true) && cause != nil {
		c.log.Error("connection broken", cause)
	}
}

// IsBroken reports whether the connection has been marked Broken by a
// transport failure.
func (c *Connection) IsBroken() bool {
	return c.broken.Load()
}

// GoalThreadID returns the server's goal-thread identifier recorded at
// handshake, for diagnostics and the supervisor's halt path.
func (c *Connection) GoalThreadID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goalThreadID
}

// CommThreadID returns the server's communication-thread identifier
// recorded at handshake.
func (c *Connection) CommThreadID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commThreadID
}

// Close shuts the socket down unconditionally. It never panics, even on
// an already-broken connection (spec.md §9 drop safety). Sending the
// close. protocol message first, if at all possible, is the Query
// Channel's responsibility (spec.md §4.4) — Connection only owns the
// raw socket.
func (c *Connection) Close() error {
	c.broken.Store(true)
	return c.conn.Close()
}

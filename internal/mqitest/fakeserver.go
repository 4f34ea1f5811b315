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

// Package mqitest is a minimal in-process stand-in for the query
// evaluation server, used only by this module's own test suites to drive
// the client protocol state machine without a real logic-programming
// engine.
package mqitest

import (
	"bufio"
	"net"

	prlframe "github/sabouaram/prologmqi/frame"
)

// TB is the slice of *testing.T (and Ginkgo's GinkgoTInterface) that Start needs.
type TB interface {
	Helper()
	Fatalf(format string, args ...interface{})
	Cleanup(func())
}

// Server is a scripted fake MQI server: it accepts connections and runs
// Script against each one on its own background goroutine.
type Server struct {
	Addr string

	ln net.Listener
}

// Script is a handler invoked with the accepted connection and its
// framed reader, once per incoming connection.
type Script func(conn net.Conn, r *bufio.Reader)

// Start listens on an ephemeral loopback TCP port and runs script against
// every accepted connection until the test ends.
func Start(t TB, script Script) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("mqitest: listen: %v", err)
	}

	s := &Server{Addr: ln.Addr().String(), ln: ln}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go script(conn, bufio.NewReader(conn))
		}
	}()

	t.Cleanup(func() { _ = ln.Close() })
	return s
}

// Port returns the numeric TCP port the server is listening on.
func (s *Server) Port() uint16 {
	_, portStr, _ := net.SplitHostPort(s.Addr)
	var p int
	for _, c := range portStr {
		p = p*10 + int(c-'0')
	}
	return uint16(p)
}

// ReadFrame reads and returns one frame's payload as a string, or "" on error.
func ReadFrame(r *bufio.Reader) string {
	payload, err := prlframe.Read(r)
	if err != nil {
		return ""
	}
	return string(payload)
}

// WriteFrame writes payload as one frame, ignoring any error (the
// scripted server is meant to be terse; tests assert on the client side).
func WriteFrame(conn net.Conn, payload string) {
	_ = prlframe.WriteString(conn, payload)
}

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

package supervisor

import (
	prlconn "github/sabouaram/prologmqi/connection"
	prlerr "github/sabouaram/prologmqi/errors"
	prlquery "github/sabouaram/prologmqi/query"
)

// ThreadStatus is the outcome of DiagnoseThreadStatus: whether the remote
// goal thread this Connection handshook with is still alive, gone, or
// unknown because the probe itself failed.
type ThreadStatus uint8

const (
	ThreadStatusUnknown ThreadStatus = iota
	ThreadStatusAlive
	ThreadStatusGone
)

// DiagnoseThreadStatus probes whether conn's remote goal thread is still
// running by asking it to evaluate the always-true goal true/0 under the
// server's default query timeout. It is a monitoring/diagnostic helper only — never used on the
// core answer path — and mirrors the reference suite's handling of
// exception($aborted): that specific exception is treated as "thread gone",
// per spec.md §9 Open Question (a), which explicitly scopes this policy to
// diagnostics rather than the core Query Channel.
func DiagnoseThreadStatus(conn *prlconn.Connection) ThreadStatus {
	if conn.IsBroken() {
		return ThreadStatusGone
	}

	ch := prlquery.New(conn, nil, nil)
	_, err := ch.Query("true", nil)
	if err == nil {
		return ThreadStatusAlive
	}

	// A decoded exception($aborted) term's functor is "$aborted"; anything
	// else observed here is inconclusive for this diagnostic's purposes.
	if pe, ok := err.(prlerr.Error); ok {
		if t, ok := pe.Term(); ok && t.Functor() == "$aborted" {
			return ThreadStatusGone
		}
	}

	return ThreadStatusUnknown
}

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

// Package config defines the Supervisor's construction-time configuration
// and the ConnectionEndpoint it resolves to, validated synchronously with
// github.com/go-playground/validator/v10 so construction errors surface
// with no side effects (no process spawned, no socket opened).
package config

import "fmt"

// EndpointKind discriminates ConnectionEndpoint.
type EndpointKind uint8

const (
	EndpointTCPLoopback EndpointKind = iota
	EndpointLocalSocket
)

// Endpoint is the resolved address a Connection dials: either a TCP
// loopback port or a local (Unix-domain) socket path.
type Endpoint struct {
	Kind EndpointKind
	Port uint16
	Path string
}

// TCPLoopback builds a TCP-loopback Endpoint.
func TCPLoopback(port uint16) Endpoint {
	return Endpoint{Kind: EndpointTCPLoopback, Port: port}
}

// LocalSocket builds a local-socket Endpoint.
func LocalSocket(path string) Endpoint {
	return Endpoint{Kind: EndpointLocalSocket, Path: path}
}

func (e Endpoint) String() string {
	switch e.Kind {
	case EndpointTCPLoopback:
		return fmt.Sprintf("127.0.0.1:%d", e.Port)
	case EndpointLocalSocket:
		return e.Path
	default:
		return "<invalid endpoint>"
	}
}

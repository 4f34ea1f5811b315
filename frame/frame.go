/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package frame implements the length-prefixed message framing used on the
// wire: an ASCII decimal byte count, a period, a newline, then exactly that
// many UTF-8 payload bytes. The transport is message-oriented and a Frame
// value never splits or coalesces with another.
package frame

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// MaxFrameLength bounds the announced payload length accepted by Read,
// guarding against a malformed or hostile header turning a protocol bug
// into an unbounded allocation.
const MaxFrameLength = 64 * 1024 * 1024

// Heartbeat is the single well-defined heartbeat marker payload. Per the
// design notes, implementers must not heuristically treat arbitrary short
// frames as heartbeats — only this exact payload is one.
const Heartbeat = "."

var (
	// ErrMalformedHeader is returned when the length header is not a valid
	// non-negative decimal integer terminated by '.'.
	ErrMalformedHeader = errors.New("frame: malformed length header")
	// ErrFrameTooLarge is returned when the announced length exceeds MaxFrameLength.
	ErrFrameTooLarge = errors.New("frame: announced length exceeds maximum")
	// ErrNegativeLength is returned when the announced length is negative.
	ErrNegativeLength = errors.New("frame: negative length")
)

// Write encodes payload as one frame and writes it to w.
func Write(w io.Writer, payload []byte) error {
	header := strconv.Itoa(len(payload)) + ".\n"
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("frame: write header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("frame: write payload: %w", err)
	}
	return nil
}

// WriteString is a convenience for Write([]byte(payload)).
func WriteString(w io.Writer, payload string) error {
	return Write(w, []byte(payload))
}

// Read decodes exactly one frame from r: the ASCII decimal header up to the
// first '.', the newline that follows it, then the announced number of
// payload bytes.
func Read(r *bufio.Reader) ([]byte, error) {
	header, err := r.ReadString('.')
	if err != nil {
		return nil, fmt.Errorf("frame: read header: %w", err)
	}
	header = header[:len(header)-1] // drop the trailing '.'

	n, err := strconv.Atoi(header)
	if err != nil {
		return nil, ErrMalformedHeader
	}
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if n > MaxFrameLength {
		return nil, ErrFrameTooLarge
	}

	if nl, err := r.ReadByte(); err != nil {
		return nil, fmt.Errorf("frame: read header newline: %w", err)
	} else if nl != '\n' {
		return nil, ErrMalformedHeader
	}

	if n == 0 {
		return []byte{}, nil
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("frame: read payload: %w", err)
	}
	return payload, nil
}

// IsHeartbeat reports whether payload is the distinguished heartbeat marker.
func IsHeartbeat(payload []byte) bool {
	return string(payload) == Heartbeat
}

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

package term

import (
	"strconv"
	"strings"
)

// Encode renders t into the canonical source form the remote parser would
// accept. Variable names are emitted as-is — callers that want canonical
// A, B, C... naming should Decode through DecodeValue first, which already
// performs that rewrite.
func Encode(t Term) string {
	var b strings.Builder
	encodeInto(&b, t)
	return b.String()
}

func encodeInto(b *strings.Builder, t Term) {
	switch t.kind {
	case KindAtom:
		b.WriteString(quoteAtom(t.atom))
	case KindInteger:
		b.WriteString(strconv.FormatInt(t.i, 10))
	case KindFloat:
		b.WriteString(formatFloat(t.f))
	case KindString:
		b.WriteString(quoteString(t.str))
	case KindVariable:
		b.WriteString(t.vr)
	case KindList:
		b.WriteByte('[')
		for i, e := range t.list {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeInto(b, e)
		}
		b.WriteByte(']')
	case KindCompound:
		b.WriteString(quoteAtom(t.functor))
		b.WriteByte('(')
		for i, a := range t.args {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeInto(b, a)
		}
		b.WriteByte(')')
	}
}

// quoteAtom emits name unquoted when it matches the bare-atom grammar,
// otherwise wraps it in single quotes with '\' and embedded quotes escaped.
func quoteAtom(name string) string {
	if unquotedAtomPattern.MatchString(name) {
		return name
	}
	return "'" + escapeQuoted(name) + "'"
}

func quoteString(s string) string {
	return "\"" + strings.ReplaceAll(strings.ReplaceAll(s, "\\", "\\\\"), "\"", "\\\"") + "\""
}

func escapeQuoted(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	return s
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

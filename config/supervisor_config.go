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

package config

import (
	"runtime"

	"github.com/go-playground/validator/v10"

	prlerr "github/sabouaram/prologmqi/errors"
)

var validate = validator.New()

// localSocketSupported is false on platforms this module does not trust
// with Unix-domain socket semantics for the MQI transport.
func localSocketSupported() bool {
	return runtime.GOOS != "windows"
}

// SupervisorConfig is the Supervisor's construction-time configuration,
// per the data model's SupervisorConfig. The zero value means: don't
// launch, with neither Port nor UnixDomainSocket set, which the Supervisor
// rejects with a ConfigError — callers set LaunchMQI or an endpoint
// explicitly.
type SupervisorConfig struct {
	// LaunchMQI requests that the Supervisor spawn a child server process.
	// When false, Port or UnixDomainSocket must identify an already-running
	// server.
	LaunchMQI bool

	// Port, when non-nil, pins the TCP-loopback port to connect to (launch
	// requested) or already listening on (LaunchMQI false). Mutually
	// exclusive with UnixDomainSocket.
	Port *uint16 `validate:"omitempty,excluded_with=UnixDomainSocket"`

	// UnixDomainSocket, when non-nil, selects a local-socket endpoint.
	// An empty string requests the Supervisor auto-generate a path (only
	// meaningful with LaunchMQI). Mutually exclusive with Port.
	UnixDomainSocket *string `validate:"omitempty,excluded_with=Port"`

	// Password is the shared handshake secret. Auto-generated when empty
	// and LaunchMQI is set.
	Password string

	// OutputFileName, if set, receives the spawned process's stderr, and
	// its stdout once the port/password lines have been read.
	// Valid only when LaunchMQI is true.
	OutputFileName string

	// TraceFlag is an opaque value forwarded to the server's mqi_traces
	// launch option.
	TraceFlag string

	// DefaultQueryTimeoutSeconds, if set, is forwarded as the server's
	// query_timeout launch option; per-query callers may still override it.
	DefaultQueryTimeoutSeconds *float64

	// HaltOnConnectionFailure mirrors the server's
	// halt_on_connection_failure launch option: if true, the Supervisor's
	// teardown may rely on dropping the last connection to halt the
	// server instead of sending halt. explicitly.
	HaltOnConnectionFailure bool
}

// Validate applies the field-level validator tags and the remaining
// cross-cutting rules from spec.md §4.5 / §8, returning a ConfigError on
// the first violation. It performs no I/O and has no side effects.
func (c *SupervisorConfig) Validate() prlerr.Error {
	if err := validate.Struct(c); err != nil {
		return prlerr.NewConfigError("port and unix_domain_socket are mutually exclusive: " + err.Error())
	}

	if c.UnixDomainSocket != nil && !localSocketSupported() {
		return prlerr.NewConfigError("unix_domain_socket is not supported on this platform")
	}

	if c.OutputFileName != "" && !c.LaunchMQI {
		return prlerr.NewConfigError("output_file_name requires launch_mqi")
	}

	return nil
}

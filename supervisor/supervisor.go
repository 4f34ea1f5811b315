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

// Package supervisor owns the lifecycle of the query evaluation server
// process (when launched locally) or of an already-running server's
// endpoint, and hands out Connections bound to it. Everything here is an
// external collaborator to the Query Channel: process spawning, temporary
// filesystem housekeeping, and teardown ordering.
package supervisor

import (
	"fmt"
	"sync"
	"time"

	prlcfg "github/sabouaram/prologmqi/config"
	prlconn "github/sabouaram/prologmqi/connection"
	prlerr "github/sabouaram/prologmqi/errors"
	"github/sabouaram/prologmqi/logger"
	"github/sabouaram/prologmqi/metrics"

	"golang.org/x/sync/errgroup"
)

// TeardownTimeout bounds how long Close waits for a launched child process
// to exit before giving up on a clean shutdown.
const TeardownTimeout = 10 * time.Second

// Supervisor resolves an Endpoint (by launching a child process or by
// trusting a caller-supplied one already running) and is a factory for
// Connections bound to it.
type Supervisor struct {
	cfg      prlcfg.SupervisorConfig
	log      logger.Logger
	metrics  *metrics.Collector
	endpoint prlcfg.Endpoint
	password string

	proc *launchedProcess // nil unless LaunchMQI

	mu    sync.Mutex
	conns []*prlconn.Connection
	state supervisorState
}

type supervisorState uint8

const (
	supervisorRunning supervisorState = iota
	supervisorClosed
)

// New validates cfg, launches a child process if cfg.LaunchMQI is set, and
// returns a Supervisor ready to hand out Connections. On any launch failure
// it cleans up whatever partial state it created before returning.
func New(cfg prlcfg.SupervisorConfig, log logger.Logger, mc *metrics.Collector) (*Supervisor, error) {
	if log == nil {
		log = logger.Discard()
	}
	if verr := cfg.Validate(); verr != nil {
		return nil, verr
	}

	s := &Supervisor{cfg: cfg, log: log, metrics: mc}

	if !cfg.LaunchMQI {
		ep, err := endpointFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		s.endpoint = ep
		s.password = cfg.Password
		return s, nil
	}

	password := cfg.Password
	if password == "" {
		var err error
		password, err = generatePassword()
		if err != nil {
			return nil, prlerr.NewLaunchError("", err)
		}
	}

	proc, ep, err := launch(cfg, password, log)
	if err != nil {
		return nil, err
	}

	s.proc = proc
	s.endpoint = ep
	s.password = password
	return s, nil
}

func endpointFromConfig(cfg prlcfg.SupervisorConfig) (prlcfg.Endpoint, error) {
	switch {
	case cfg.UnixDomainSocket != nil:
		if *cfg.UnixDomainSocket == "" {
			return prlcfg.Endpoint{}, prlerr.NewConfigError("unix_domain_socket path required when not launching")
		}
		return prlcfg.LocalSocket(*cfg.UnixDomainSocket), nil
	case cfg.Port != nil:
		return prlcfg.TCPLoopback(*cfg.Port), nil
	default:
		return prlcfg.Endpoint{}, prlerr.NewConfigError("port or unix_domain_socket required when not launching")
	}
}

// Connect dials a new Connection against the Supervisor's resolved
// Endpoint and tracks it for teardown.
func (s *Supervisor) Connect() (*prlconn.Connection, error) {
	s.mu.Lock()
	if s.state == supervisorClosed {
		s.mu.Unlock()
		return nil, prlerr.NewConnectionFailedError(fmt.Errorf("supervisor: already closed"))
	}
	s.mu.Unlock()

	c, err := prlconn.Dial(s.endpoint, s.password, s.log)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.conns = append(s.conns, c)
	s.mu.Unlock()
	return c, nil
}

// Endpoint returns the resolved endpoint Connections dial.
func (s *Supervisor) Endpoint() prlcfg.Endpoint { return s.endpoint }

// Close runs the teardown sequence from spec.md §4.5: close every
// outstanding Connection concurrently, halt the server (or rely on
// halt-on-connection-failure), wait for the child to exit, then remove any
// filesystem artifacts the launch created. Safe to call more than once.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	if s.state == supervisorClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = supervisorClosed
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	var eg errgroup.Group
	for _, c := range conns {
		c := c
		eg.Go(func() error {
			return c.Close()
		})
	}
	_ = eg.Wait()

	if s.proc == nil {
		return nil
	}

	if !s.cfg.HaltOnConnectionFailure {
		if admin, err := prlconn.Dial(s.endpoint, s.password, s.log); err == nil {
			_ = admin.Send("halt.")
			_ = admin.Close()
		}
	}

	var wg errgroup.Group
	wg.Go(func() error {
		return s.proc.wait(TeardownTimeout)
	})
	wg.Go(func() error {
		return nil // no work here: filesystem cleanup runs after Wait, below
	})
	_ = wg.Wait()

	s.proc.cleanup()
	return nil
}

func generatePassword() (string, error) {
	return newUUID()
}

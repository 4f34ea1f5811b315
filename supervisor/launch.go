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
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-uuid"

	prlcfg "github/sabouaram/prologmqi/config"
	prlerr "github/sabouaram/prologmqi/errors"
	"github/sabouaram/prologmqi/logger"
)

// executableName is the server binary launched when SupervisorConfig.LaunchMQI
// is set. PROLOG_PATH overrides it; this is a test/deployment hook, not part
// of the protocol core, mirroring the reference test suite's own use of that
// variable (spec.md §6).
func executableName() string {
	if p := os.Getenv("PROLOG_PATH"); p != "" {
		return p
	}
	return "swipl"
}

// extraArgs splits PROLOG_ARGS (space-separated) onto the command line
// ahead of the mqi_start(...) goal, same test hook as executableName.
func extraArgs() []string {
	raw := os.Getenv("PROLOG_ARGS")
	if raw == "" {
		return nil
	}
	return strings.Fields(raw)
}

// launchedProcess tracks a spawned server child and the filesystem
// artifacts its launch created, for teardown.
type launchedProcess struct {
	cmd     *exec.Cmd
	tempDir string // "" if the Supervisor didn't create one
	sockPath string // "" unless a local socket was used
}

func newUUID() (string, error) {
	return uuid.GenerateUUID()
}

// launch spawns the server child per spec.md §4.5/§6, blocking until it has
// written its two stdout lines: the endpoint, then the password. The
// endpoint line is parsed only when the server picks the port; the password
// line is compared with the one this Supervisor passed in, and a mismatch
// is only logged. On any error it removes the temporary directory it
// created.
func launch(cfg prlcfg.SupervisorConfig, password string, log logger.Logger) (*launchedProcess, prlcfg.Endpoint, error) {
	var (
		ep      prlcfg.Endpoint
		tempDir string
		sockPath string
	)

	launched := false
	defer func() {
		if !launched && tempDir != "" {
			_ = os.RemoveAll(tempDir)
		}
	}()

	switch {
	case cfg.UnixDomainSocket != nil:
		path := *cfg.UnixDomainSocket
		if path == "" {
			dir, err := os.MkdirTemp("", "prologmqi-")
			if err != nil {
				return nil, prlcfg.Endpoint{}, prlerr.NewLaunchError("", err)
			}
			tempDir = dir
			path = filepath.Join(dir, "mqi.sock")
		}
		sockPath = path
		ep = prlcfg.LocalSocket(path)
	case cfg.Port != nil:
		ep = prlcfg.TCPLoopback(*cfg.Port)
	default:
		ep = prlcfg.TCPLoopback(0) // 0 asks the server to pick an ephemeral port
	}

	goal := buildLaunchGoal(cfg, ep, password)
	args := append(append([]string{}, extraArgs()...), "-g", goal, "-t", "halt")
	cmd := exec.Command(executableName(), args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, prlcfg.Endpoint{}, prlerr.NewLaunchError("", err)
	}
	var outFile *os.File
	if cfg.OutputFileName != "" {
		if f, ferr := os.Create(cfg.OutputFileName); ferr == nil {
			outFile = f
			cmd.Stderr = f
		}
	}

	if err := cmd.Start(); err != nil {
		return nil, prlcfg.Endpoint{}, prlerr.NewLaunchError("", err)
	}

	reader := bufio.NewReader(stdout)
	firstLine, err := readLine(reader)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, prlcfg.Endpoint{}, prlerr.NewLaunchError("server did not write its endpoint line", err)
	}
	secondLine, err := readLine(reader)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, prlcfg.Endpoint{}, prlerr.NewLaunchError("server did not write its password line", err)
	}
	if secondLine != password {
		log.Warn("server echoed a different password than requested")
	}

	if ep.Kind == prlcfg.EndpointTCPLoopback && ep.Port == 0 {
		port, perr := strconv.ParseUint(firstLine, 10, 16)
		if perr != nil {
			_ = cmd.Process.Kill()
			return nil, prlcfg.Endpoint{}, prlerr.NewLaunchError("server's endpoint line was not a port number", perr)
		}
		ep = prlcfg.TCPLoopback(uint16(port))
	}

	if outFile != nil {
		go func() { _, _ = io.Copy(outFile, reader) }()
	}

	log.WithFields(logger.Fields{"endpoint": ep.String()}).Info("server launched")

	launched = true
	return &launchedProcess{cmd: cmd, tempDir: tempDir, sockPath: sockPath}, ep, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// buildLaunchGoal renders the mqi_start(...) startup goal from spec.md §6.
func buildLaunchGoal(cfg prlcfg.SupervisorConfig, ep prlcfg.Endpoint, password string) string {
	var opts []string
	switch ep.Kind {
	case prlcfg.EndpointLocalSocket:
		opts = append(opts, fmt.Sprintf("unix_domain_socket('%s')", ep.Path))
	default:
		if ep.Port != 0 {
			opts = append(opts, fmt.Sprintf("port(%d)", ep.Port))
		}
	}
	opts = append(opts,
		fmt.Sprintf("password('%s')", password),
		"server_thread(mqi_server)",
		"write_connection_values(true)",
		"run_server_on_thread(true)",
		fmt.Sprintf("halt_on_connection_failure(%t)", cfg.HaltOnConnectionFailure),
	)
	if cfg.DefaultQueryTimeoutSeconds != nil {
		opts = append(opts, fmt.Sprintf("query_timeout(%v)", *cfg.DefaultQueryTimeoutSeconds))
	}
	if cfg.TraceFlag != "" {
		opts = append(opts, fmt.Sprintf("mqi_traces('%s')", cfg.TraceFlag))
	}
	return fmt.Sprintf("mqi_start([%s])", strings.Join(opts, ","))
}

// wait blocks until the child exits or d elapses, whichever comes first.
func (p *launchedProcess) wait(d time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(d):
		_ = p.cmd.Process.Kill()
		return fmt.Errorf("supervisor: child did not exit within %s", d)
	}
}

// cleanup removes the socket file and temp directory this launch created,
// per spec.md §4.5 teardown step (iv) and the drop-safety design note —
// it must not fail loudly even if the paths are already gone.
func (p *launchedProcess) cleanup() {
	if p.sockPath != "" {
		_ = os.Remove(p.sockPath)
	}
	if p.tempDir != "" {
		_ = os.RemoveAll(p.tempDir)
	}
}

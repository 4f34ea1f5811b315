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

// Command prologmqictl is a thin demonstration client: it builds a
// SupervisorConfig from flags, launches (or connects to) a server, runs one
// query, prints the answer, and tears down. It is a consumer of the core
// packages, never the other way around.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	prlcfg "github/sabouaram/prologmqi/config"
	"github/sabouaram/prologmqi/logger"
	prlquery "github/sabouaram/prologmqi/query"
	prlsup "github/sabouaram/prologmqi/supervisor"
	prlterm "github/sabouaram/prologmqi/term"
)

func main() {
	var (
		port       uint16
		socketPath string
		launch     bool
		password   string
		goal       string
		timeout    float64
		noTimeout  bool
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "prologmqictl",
		Short: "Run one query against a Prolog MQI server and print the answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Discard()
			if verbose {
				log = logger.New(logrus.StandardLogger())
			}

			cfg := prlcfg.SupervisorConfig{
				LaunchMQI: launch,
				Password:  password,
			}
			if socketPath != "" {
				cfg.UnixDomainSocket = &socketPath
			} else if port != 0 {
				cfg.Port = &port
			}

			sup, err := prlsup.New(cfg, log, nil)
			if err != nil {
				return err
			}
			defer func() { _ = sup.Close() }()

			conn, err := sup.Connect()
			if err != nil {
				return err
			}

			ch := prlquery.New(conn, log, nil)

			var to *float64
			if !noTimeout {
				to = &timeout
			}
			ans, err := ch.Query(goal, to)
			if err != nil {
				return err
			}

			printAnswer(ans)
			return nil
		},
	}

	root.Flags().Uint16Var(&port, "port", 0, "TCP loopback port (launch: requested; connect: required)")
	root.Flags().StringVar(&socketPath, "unix-socket", "", "Unix-domain socket path, overrides --port")
	root.Flags().BoolVar(&launch, "launch", false, "spawn a new server process instead of connecting to one")
	root.Flags().StringVar(&password, "password", "", "handshake password (auto-generated when launching and empty)")
	root.Flags().StringVar(&goal, "goal", "true", "goal text to submit")
	root.Flags().Float64Var(&timeout, "timeout", 10, "query timeout in seconds")
	root.Flags().BoolVar(&noTimeout, "no-timeout", false, "use the server's configured default timeout")
	root.Flags().BoolVar(&verbose, "verbose", false, "log protocol lifecycle events to stderr")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printAnswer(ans prlquery.Answer) {
	switch ans.Kind {
	case prlquery.AnswerTrue:
		fmt.Println("true")
	case prlquery.AnswerNone:
		fmt.Println("false")
	case prlquery.AnswerBindings:
		for _, b := range ans.Bindings {
			fmt.Println(formatBinding(b))
		}
	}
}

func formatBinding(b prlquery.Binding) string {
	s := ""
	first := true
	for name, val := range b {
		if !first {
			s += ", "
		}
		first = false
		s += fmt.Sprintf("%s = %s", name, prlterm.Encode(val))
	}
	return s
}

// Copyright 2024 The Mm0 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli is cmd/mm0's command-line frontend, built the way the
// teacher's cmd/terrastack/cli builds terrastack's: a kong-parsed
// cliSpec, a small cli type carrying the parsed args plus stdin/stdout/
// stderr, and a Run entrypoint with no process-global state so it can be
// called repeatedly (e.g. from tests) without interference between
// calls.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/monocodus-demonstrations/mm0/config"
	"github.com/monocodus-demonstrations/mm0/env"
	"github.com/monocodus-demonstrations/mm0/merge"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/mm0log"
	"github.com/monocodus-demonstrations/mm0/span"
)

type cliSpec struct {
	Elab struct {
		File string `arg:"" type:"existingfile" help:"declarations file to elaborate."`
	} `cmd:"" help:"Elaborate a declarations file and report any errors."`

	Stats struct {
		File string `arg:"" optional:"true" type:"existingfile" help:"declarations file to elaborate before reporting stats; omit to report an empty environment."`
	} `cmd:"" help:"Print environment statistics (sort/term/theorem/atom counts)."`

	Merge struct {
		Base  string `arg:"" type:"existingfile" help:"base declarations file, kept."`
		Other string `arg:"" type:"existingfile" help:"declarations file merged into base."`
	} `cmd:"" help:"Elaborate two declarations files independently, then merge the second into the first."`
}

// Run parses args and executes the resulting command, writing results to
// stdout and non-fatal diagnostics to stderr, mirroring the teacher's
// cmd/terrastack/cli.Run contract exactly (same signature, same "each
// call is isolated" guarantee).
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	c, err := newCLI(args, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	return c.run()
}

type cli struct {
	ctx        *kong.Context
	parsedArgs *cliSpec
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	exit       bool
}

func newCLI(args []string, stdin io.Reader, stdout, stderr io.Writer) (*cli, error) {
	if len(args) == 0 {
		args = []string{"--help"}
	}

	parsedArgs := cliSpec{}
	kongExit := false
	kongExitStatus := 0

	parser, err := kong.New(&parsedArgs,
		kong.Name("mm0"),
		kong.Description("Metamath Zero elaboration core command line."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Exit(func(status int) {
			kongExit = true
			kongExitStatus = status
		}),
		kong.Writers(stdout, stderr))
	if err != nil {
		return nil, fmt.Errorf("failed to create cli parser: %v", err)
	}

	ctx, err := parser.Parse(args)
	if kongExit && kongExitStatus == 0 {
		return &cli{exit: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse cli args %v: %v", args, err)
	}

	return &cli{
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		parsedArgs: &parsedArgs,
		ctx:        ctx,
	}, nil
}

func (c *cli) run() error {
	if c.exit {
		return nil
	}

	logger, sessionID := c.loadSession()

	switch c.ctx.Command() {
	case "elab <file>":
		e := env.New(logger)
		src, errs := readFile(c.parsedArgs.Elab.File)
		if errs == nil {
			errs = elaborateFile(e, src, c.parsedArgs.Elab.File)
		}
		return c.reportAndFail(errs, sessionID, "elaborated %s with no errors", c.parsedArgs.Elab.File)

	case "stats":
		e := env.New(logger)
		c.printStats(e.Close())
		return nil

	case "stats <file>":
		e := env.New(logger)
		src, errs := readFile(c.parsedArgs.Stats.File)
		if errs == nil {
			errs = elaborateFile(e, src, c.parsedArgs.Stats.File)
		}
		c.printStats(e.Close())
		return c.reportAndFail(errs, sessionID, "")

	case "merge <base> <other>":
		return c.runMerge(logger, sessionID)

	default:
		return fmt.Errorf("unexpected command sequence: %s", c.ctx.Command())
	}
}

func (c *cli) runMerge(logger zerolog.Logger, sessionID string) error {
	base := env.New(logger)
	baseSrc, errs := readFile(c.parsedArgs.Merge.Base)
	if errs == nil {
		errs = elaborateFile(base, baseSrc, c.parsedArgs.Merge.Base)
	}
	if errs.HasErrors() {
		return c.reportAndFail(errs, sessionID, "")
	}
	other := env.New(logger)
	otherSrc, errs := readFile(c.parsedArgs.Merge.Other)
	if errs == nil {
		errs = elaborateFile(other, otherSrc, c.parsedArgs.Merge.Other)
	}
	if errs.HasErrors() {
		return c.reportAndFail(errs, sessionID, "")
	}

	if err := env.CheckFormatVersionCompat(base.FormatVersion(), other.FormatVersion()); err != nil {
		c.logerr("warn: %v", err)
	}

	errs = merge.Merge(base, other)
	if errs.HasErrors() {
		return c.reportAndFail(errs, sessionID, "")
	}
	c.log("merged %s into %s", c.parsedArgs.Merge.Other, c.parsedArgs.Merge.Base)
	c.printStats(base.Close())
	return nil
}

// loadSession builds this run's config (mm0.hcl in the working directory,
// or config.Default if none), a logger at the config's reporting level
// carrying a fresh session id, and returns the session id for error
// cross-referencing (mm0log.NewSessionID/WithSession, mm0err.Error.Session).
func (c *cli) loadSession() (zerolog.Logger, string) {
	cfg := config.Default()
	if wd, err := os.Getwd(); err == nil {
		if path, ferr := config.Find(wd); ferr == nil {
			if loaded, errs := config.Load(path); !errs.HasErrors() {
				cfg = loaded
			}
		}
	}

	level := zerolog.InfoLevel
	switch cfg.Report.ParsedLevel() {
	case mm0err.LevelWarn:
		level = zerolog.WarnLevel
	case mm0err.LevelError:
		level = zerolog.ErrorLevel
	}

	sessionID := mm0log.NewSessionID()
	logger := mm0log.WithSession(mm0log.New(c.stderr, level), sessionID)
	return logger, sessionID
}

func (c *cli) printStats(s env.Snapshot) {
	c.log("sorts=%d terms=%d thms=%d atoms=%d format=%s", s.Sorts, s.Terms, s.Thms, s.Atoms, s.FormatVersion)
}

// reportAndFail prints every error in errs to stderr, tagging each with
// sessionID, and returns a non-nil error if any is at LevelError. okFormat,
// if non-empty, is printed to stdout on success.
func (c *cli) reportAndFail(errs *mm0err.List, sessionID, okFormat string, args ...any) error {
	for _, e := range errs.Errs {
		e.Session = sessionID
		c.logerr("%s: %v", e.Kind, e)
	}
	if errs.HasErrors() {
		return fmt.Errorf("%d error(s)", len(errs.Errs))
	}
	if okFormat != "" {
		c.log(okFormat, args...)
	}
	return nil
}

// readFile returns src and a nil error list on success, or a nil src and
// a single-error list on failure, so call sites can chain straight into
// elaborateFile without a separate error branch.
func readFile(path string) ([]byte, *mm0err.List) {
	src, err := os.ReadFile(path)
	if err != nil {
		errs := &mm0err.List{}
		errs.Add(mm0err.Wrap(mm0err.ErrConfig, span.File{Name: path}, err))
		return nil, errs
	}
	return src, nil
}

func (c *cli) log(format string, args ...any) {
	fmt.Fprintln(c.stdout, fmt.Sprintf(format, args...))
}

func (c *cli) logerr(format string, args ...any) {
	fmt.Fprintln(c.stderr, fmt.Sprintf(format, args...))
}

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

// Package config loads the engine's own `mm0.hcl` configuration: resource
// limits and default reporting behavior for an elaboration session, as
// opposed to the logical mathematical content a session elaborates (that
// always arrives through the external AST, never through this file; see
// span's package doc). Parsed with hashicorp/hcl/v2 the same way the
// teacher's hcl.go parses `terramate.tsk.hcl`: hclparse reads the file
// into an *hcl.File, hcl.BodySchema/Content pulls out the known blocks,
// and each attribute's expression is evaluated to a cty.Value and type
// checked by hand, since a handful of scalar settings do not justify
// gohcl's full struct-tag decoder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/madlambda/spells/errutil"
	"github.com/zclconf/go-cty/cty"

	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
)

// ErrNotFound is a sentinel condition that never needs a location (the
// whole directory has no config file at all), so it uses errutil.Error
// rather than mm0err.Error, following the teacher's globals.go/hcl/eval's
// own split between string-constant sentinels and Kind-tagged located
// errors.
const ErrNotFound errutil.Error = "no mm0.hcl found"

// Filename is the config file name Find looks for (spec.md's
// `mm0.hcl`, the teacher's `terramate.tsk.hcl` equivalent).
const Filename = "mm0.hcl"

// Find locates dir's mm0.hcl, returning ErrNotFound if dir has none. A
// session with no config file runs with Default instead (cmd/mm0 treats
// ErrNotFound as "use defaults", not a fatal condition).
func Find(dir string) (string, error) {
	path := filepath.Join(dir, Filename)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// Limits mirrors the teacher's `terramate.config` block, but for the
// tactic evaluator's own resource bounds (spec §5) rather than a stack's
// git/run settings.
type Limits struct {
	// MaxDepth caps non-tail recursion (eval.DefaultMaxDepth's override).
	MaxDepth int

	// Timeout is the wall-clock deadline for one top-level evaluation; a
	// zero Timeout means no deadline, matching eval.New's zero-deadline
	// convention.
	Timeout time.Duration

	// PollInterval overrides eval.PollInterval, the step count between
	// cancellation/deadline checks.
	PollInterval int
}

// Report mirrors the teacher's `terramate.config.git`-style nested block,
// here for the default diagnostic posture of a session (spec §6/§7).
type Report struct {
	// Level is one of "error", "warn", "info" (mm0err.Level's names).
	Level string

	// CheckProofs toggles proof checking on by default (eval.checkProofs).
	CheckProofs bool

	// RefineExtraArgs, if non-empty, names the atom a session should bind
	// as its default `refine-extra-args` hook before any script runs.
	RefineExtraArgs string
}

// Config is the root of a parsed `mm0.hcl` file.
type Config struct {
	Limits Limits
	Report Report
}

// Default matches eval's own zero-value defaults, so a session with no
// mm0.hcl file behaves exactly as eval.New already does on its own.
func Default() *Config {
	return &Config{
		Limits: Limits{
			MaxDepth:     4096,
			PollInterval: 256,
		},
		Report: Report{
			Level:       "info",
			CheckProofs: true,
		},
	}
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "limits"},
		{Type: "report"},
	},
}

// Load reads and parses path as an mm0.hcl file, starting from Default
// and overriding whatever the file's limits/report blocks set. Either
// block may be omitted; an omitted block leaves Default's values in
// place for its fields.
func Load(path string) (*Config, *mm0err.List) {
	errs := &mm0err.List{}
	src, err := os.ReadFile(path)
	if err != nil {
		errs.Add(mm0err.New(mm0err.ErrConfig, span.Zero, "reading %s: %v", path, err))
		return nil, errs
	}
	return Parse(src, path)
}

// Parse is Load's body factored out so tests (and callers already holding
// file contents, e.g. from an in-memory fixture) don't need a temp file.
func Parse(src []byte, filename string) (*Config, *mm0err.List) {
	errs := &mm0err.List{}
	cfg := Default()

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		errs.Add(diagsToErr(filename, diags))
		return nil, errs
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		errs.Add(diagsToErr(filename, diags))
		return nil, errs
	}

	for _, block := range content.Blocks {
		switch block.Type {
		case "limits":
			parseLimits(&cfg.Limits, block.Body, errs)
		case "report":
			parseReport(&cfg.Report, block.Body, errs)
		}
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return cfg, errs
}

var limitsSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "max_depth"},
		{Name: "timeout"},
		{Name: "poll_interval"},
	},
}

func parseLimits(l *Limits, body hcl.Body, errs *mm0err.List) {
	content, diags := body.Content(limitsSchema)
	if diags.HasErrors() {
		errs.Add(diagsToErr("mm0.hcl", diags))
		return
	}
	for name, attr := range content.Attributes {
		v, diags := attr.Expr.Value(&hcl.EvalContext{})
		if diags.HasErrors() {
			errs.Add(diagsToErr("mm0.hcl", diags))
			continue
		}
		switch name {
		case "max_depth":
			n, err := expectInt(v)
			if err != nil {
				errs.Add(attrTypeErr(attr, "limits.max_depth", err))
				continue
			}
			l.MaxDepth = n
		case "poll_interval":
			n, err := expectInt(v)
			if err != nil {
				errs.Add(attrTypeErr(attr, "limits.poll_interval", err))
				continue
			}
			l.PollInterval = n
		case "timeout":
			if v.Type() != cty.String {
				errs.Add(attrTypeErr(attr, "limits.timeout", fmt.Errorf("want a duration string, got %s", v.Type().FriendlyName())))
				continue
			}
			d, err := time.ParseDuration(v.AsString())
			if err != nil {
				errs.Add(attrTypeErr(attr, "limits.timeout", err))
				continue
			}
			l.Timeout = d
		}
	}
}

var reportSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "level"},
		{Name: "check_proofs"},
		{Name: "refine_extra_args"},
	},
}

func parseReport(r *Report, body hcl.Body, errs *mm0err.List) {
	content, diags := body.Content(reportSchema)
	if diags.HasErrors() {
		errs.Add(diagsToErr("mm0.hcl", diags))
		return
	}
	for name, attr := range content.Attributes {
		v, diags := attr.Expr.Value(&hcl.EvalContext{})
		if diags.HasErrors() {
			errs.Add(diagsToErr("mm0.hcl", diags))
			continue
		}
		switch name {
		case "level":
			if v.Type() != cty.String {
				errs.Add(attrTypeErr(attr, "report.level", fmt.Errorf("want a string, got %s", v.Type().FriendlyName())))
				continue
			}
			lvl := v.AsString()
			if lvl != "error" && lvl != "warn" && lvl != "info" {
				errs.Add(attrTypeErr(attr, "report.level", fmt.Errorf("must be one of error, warn, info, got %q", lvl)))
				continue
			}
			r.Level = lvl
		case "check_proofs":
			if v.Type() != cty.Bool {
				errs.Add(attrTypeErr(attr, "report.check_proofs", fmt.Errorf("want a bool, got %s", v.Type().FriendlyName())))
				continue
			}
			r.CheckProofs = v.True()
		case "refine_extra_args":
			if v.Type() != cty.String {
				errs.Add(attrTypeErr(attr, "report.refine_extra_args", fmt.Errorf("want a string, got %s", v.Type().FriendlyName())))
				continue
			}
			r.RefineExtraArgs = v.AsString()
		}
	}
}

// ParsedLevel translates Report.Level into an mm0err.Level, falling back to
// LevelError for any value Parse did not already reject.
func (r Report) ParsedLevel() mm0err.Level {
	switch r.Level {
	case "warn":
		return mm0err.LevelWarn
	case "info":
		return mm0err.LevelInfo
	default:
		return mm0err.LevelError
	}
}

func expectInt(v cty.Value) (int, error) {
	if v.Type() != cty.Number {
		return 0, fmt.Errorf("want a number, got %s", v.Type().FriendlyName())
	}
	n, _ := v.AsBigFloat().Int64()
	return int(n), nil
}

func attrTypeErr(attr *hcl.Attribute, field string, cause error) *mm0err.Error {
	r := attr.Range
	sp := span.File{Name: r.Filename, Span: span.Span{Start: r.Start.Byte, End: r.End.Byte}}
	return mm0err.New(mm0err.ErrConfig, sp, "%s: %v", field, cause)
}

func diagsToErr(filename string, diags hcl.Diagnostics) *mm0err.Error {
	sp := span.File{Name: filename}
	if d := diags[0]; d.Subject != nil {
		sp.Span = span.Span{Start: d.Subject.Start.Byte, End: d.Subject.End.Byte}
	}
	return mm0err.Wrap(mm0err.ErrConfig, sp, diags)
}

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

package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/monocodus-demonstrations/mm0/cmd/mm0/cli"
)

// writeDecl writes src to a fresh declarations file under t.TempDir and
// returns its path, the teacher's sandbox fixture reduced to what this
// package's tests actually need (a throwaway file on disk, nothing more).
func writeDecl(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decls.hcl")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

type runResult struct {
	err    error
	stdout string
	stderr string
}

func run(t *testing.T, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := cli.Run(args, strings.NewReader(""), &stdout, &stderr)
	return runResult{err: err, stdout: stdout.String(), stderr: stderr.String()}
}

const boolDecls = `
sort "bool" {}

term "true" {
  ret_sort = "bool"
}

term "false" {
  ret_sort = "bool"
}

term "not" {
  arg {
    name = "a"
    sort = "bool"
  }
  ret_sort = "bool"
}

axiom "not_true_is_false" {
  concl = ["not", "true"]
}
`

func TestElabSucceedsOnWellFormedFile(t *testing.T) {
	path := writeDecl(t, boolDecls)
	res := run(t, "elab", path)
	if res.err != nil {
		t.Fatalf("elab failed: %v; stderr=%q", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "elaborated") {
		t.Fatalf("expected a success message on stdout, got %q", res.stdout)
	}
}

func TestElabReportsUnknownSort(t *testing.T) {
	path := writeDecl(t, `
term "true" {
  ret_sort = "bool"
}
`)
	res := run(t, "elab", path)
	if res.err == nil {
		t.Fatalf("expected elab to fail on an undeclared sort")
	}
	if !strings.Contains(res.stderr, "unknown") {
		t.Fatalf("expected stderr to mention the unknown sort, got %q", res.stderr)
	}
}

func TestStatsReportsZeroForEmptyEnvironment(t *testing.T) {
	res := run(t, "stats")
	if res.err != nil {
		t.Fatalf("stats failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "sorts=0") {
		t.Fatalf("expected an empty snapshot, got %q", res.stdout)
	}
}

func TestStatsReportsCountsAfterElaboratingAFile(t *testing.T) {
	path := writeDecl(t, boolDecls)
	res := run(t, "stats", path)
	if res.err != nil {
		t.Fatalf("stats failed: %v; stderr=%q", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "sorts=1") || !strings.Contains(res.stdout, "terms=3") || !strings.Contains(res.stdout, "thms=1") {
		t.Fatalf("expected sorts=1 terms=3 thms=1 in stats output, got %q", res.stdout)
	}
}

func TestMergeCombinesTwoDisjointFiles(t *testing.T) {
	base := writeDecl(t, `
sort "bool" {}

term "true" {
  ret_sort = "bool"
}
`)
	other := writeDecl(t, `
sort "nat" {}

term "zero" {
  ret_sort = "nat"
}
`)
	res := run(t, "merge", base, other)
	if res.err != nil {
		t.Fatalf("merge failed: %v; stderr=%q", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "sorts=2") || !strings.Contains(res.stdout, "terms=2") {
		t.Fatalf("expected the merged environment to report sorts=2 terms=2, got %q", res.stdout)
	}
}

func TestMergeFailsWhenEitherFileFailsToElaborate(t *testing.T) {
	base := writeDecl(t, `sort "bool" {}`)
	other := writeDecl(t, `term "bad" { ret_sort = "nope" }`)
	res := run(t, "merge", base, other)
	if res.err == nil {
		t.Fatalf("expected merge to fail when the second file doesn't elaborate")
	}
}

func TestNoArgsPrintsHelpWithoutError(t *testing.T) {
	res := run(t)
	if res.err != nil {
		t.Fatalf("expected bare invocation to print help, not fail: %v", res.err)
	}
}

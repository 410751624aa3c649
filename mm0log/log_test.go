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

package mm0log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/monocodus-demonstrations/mm0/mm0log"
)

func TestNewFiltersBelowMinimumLevel(t *testing.T) {
	var buf bytes.Buffer
	l := mm0log.New(&buf, zerolog.WarnLevel)
	l.Info().Msg("should be filtered")
	if buf.Len() != 0 {
		t.Fatalf("expected an Info line to be filtered at WarnLevel, got %q", buf.String())
	}
	l.Warn().Msg("should pass")
	if buf.Len() == 0 {
		t.Fatalf("expected a Warn line to pass at WarnLevel")
	}
}

func TestNewSessionIDMintsDistinctNonEmptyIDs(t *testing.T) {
	a := mm0log.NewSessionID()
	b := mm0log.NewSessionID()
	if a == "" || b == "" {
		t.Fatalf("expected non-empty session ids, got %q and %q", a, b)
	}
	if a == b {
		t.Fatalf("expected two calls to mint distinct session ids")
	}
}

func TestWithSessionAttachesSessionField(t *testing.T) {
	var buf bytes.Buffer
	l := mm0log.New(&buf, zerolog.InfoLevel)
	sessioned := mm0log.WithSession(l, "test-session")
	sessioned.Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected valid JSON log line, got error %v (line: %q)", err, buf.String())
	}
	if line["session"] != "test-session" {
		t.Fatalf("expected session field test-session, got %v", line["session"])
	}
}

func TestDiscardProducesNoOutput(t *testing.T) {
	l := mm0log.Discard()
	l.Error().Msg("this must not be observable")
}

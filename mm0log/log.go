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

// Package mm0log wraps github.com/rs/zerolog the way the teacher wraps it
// in its hcl and generate packages: a logger is threaded explicitly
// through constructors, and call sites chain `.With().Str(...).Logger()`
// to add context before logging at the appropriate level.
package mm0log

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New builds a logger writing to w at the given minimum level. Passing
// io.Discard silences logging entirely, which is what tests use.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Default is a JSON logger on stderr at InfoLevel. cmd/mm0 builds its
// logger with New instead.
func Default() zerolog.Logger {
	return New(os.Stderr, zerolog.InfoLevel)
}

// Discard silences all logging; used by packages under test that don't
// want to assert on log output.
func Discard() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// NewSessionID mints a correlation ID for one elaboration session (one
// call into the core from the CLI or a language-server request), attached
// to every log line it emits and to mm0err.Error.Session so concurrent or
// re-entrant runs can be told apart (SPEC_FULL.md "DOMAIN STACK").
func NewSessionID() string {
	return uuid.NewString()
}

// WithSession returns a child logger carrying the session id field.
func WithSession(l zerolog.Logger, sessionID string) zerolog.Logger {
	return l.With().Str("session", sessionID).Logger()
}

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

// Package span locates a byte range inside one of the files the core
// receives declarations from. The core never reads file contents; it only
// carries spans supplied by the external parser (see spec §6) and reports
// them back in diagnostics.
package span

import "fmt"

// Span is a byte range [Start, End) within a single file.
type Span struct {
	Start int
	End   int
}

// File locates a Span within a named source file.
type File struct {
	Name string
	Span Span
}

// String renders a span for debug logging, not for user-facing diagnostics
// (that is the diagnostics-rendering collaborator's job, see spec §1).
func (f File) String() string {
	return fmt.Sprintf("%s:%d-%d", f.Name, f.Span.Start, f.Span.End)
}

// In reports whether f lies in the file called name; only the file name
// is compared, not the byte range. Used to decide whether a lisp error's span
// belongs to the file currently being elaborated (spec §7 "Location").
func (f File) In(name string) bool {
	return f.Name == name
}

// Zero is the empty span, used when no location information is available.
var Zero = File{}

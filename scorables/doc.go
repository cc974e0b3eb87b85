/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package scorables provides two-phase candidate selection.
//
// A Scorable is something that can try to Prepare against a
// resolution scope (possibly declining), report a comparable Score
// for a successful preparation, and Commit using the prepared state.
//
// Two Scorable implementations do almost all of the work here:
//
// A Match scorable wraps a compiled pattern.  Its preparation runs
// the pattern against the message text found in the scope and, on a
// match, asks a nested inner Scorable to prepare against a derived
// scope that exposes the match's captures.
//
// A Fold combines many Scorables into one.  Its preparation tries
// every input Scorable and keeps the one whose score compares best
// under a supplied ordering.  The same mechanism is used twice: once
// to merge handlers that share one pattern, and once to merge all the
// per-pattern Match scorables into a single top-level dispatcher.
//
// Three preparation outcomes are distinguished and never conflated:
// declining (nil state, nil error), cancellation (a context error),
// and hard failure (any other error, propagated unmodified).
package scorables

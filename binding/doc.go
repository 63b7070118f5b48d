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


// Package binding synchronizes a property of one object (the
// "target") with a value derived from another object (the "source").
//
// The primary type is Binding, and the primary method is Bind().  A
// Binding names a source Observable plus a source expression, a
// target Observable plus a dotted target path, and an update
// Strategy: Read (source to target), ReadOnce (once, at Bind time),
// or ReadWrite (both directions).  Endpoints are anything
// implementing observe.Observable.
//
// While bound, each side carries a ValueState.  A change
// notification from either side runs the synchronization protocol:
// the changed side is re-evaluated, the value travels through the
// conversion pipeline (null substitution, an optional Condenser for
// multi-valued sources, an explicit Converter or one found in the
// Registry), an optional Validator checks writes travelling from
// target to source, and the opposite endpoint is written.  Writes
// made by the engine are guarded so that the notifications they
// trigger are ignored rather than bounced back forever.
//
// A dotted path need not be fully reachable.  When an intermediate
// value is absent, the affected side reports IncompletePath, and the
// engine keeps listening so that synchronization resumes as soon as
// the path grows back.  Conversion and validation failures mark the
// offending side Invalid without unbinding anything.
//
// Bindings compose: a Binding owns an ordered list of child
// Bindings, and extension points (see TargetFactory) can bind
// children to endpoints the parent resolved at runtime.  Top-level
// Bindings can be collected in a Context, which fans group
// notifications out to ContextListeners and supplies a shared
// expression Evaluator and converter Registry.
//
// Everything here is synchronous and single-threaded: notifications
// run on whatever goroutine performed the mutation, and the engine
// starts no goroutines of its own.  A given Binding, its endpoints,
// and everything reachable from them belong to one goroutine at a
// time.
//
// Rich source expressions (anything that is not a bare dotted path)
// are evaluated by an Evaluator, which lives outside this package;
// see evaluators/ecmascript.
package binding

// Package harness runs YAML-defined conformance scenarios against a
// fully wired in-memory system: command executor, read model,
// dispatcher, and a recording notifier in place of the hub.
//
// A scenario is an ordered list of command steps. Generated ids are
// captured under step aliases so later steps can reference earlier
// results, and the recorded notification trace is normalized (ids and
// timestamps replaced with stable placeholders) so it can be compared
// byte-for-byte against golden files.
package harness

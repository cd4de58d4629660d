// Package orchestrator wires the read → decode → transform → lint → render
// pipeline behind a single call for callers that render a schema once, such
// as the CLI, without running an interactive session.
package orchestrator

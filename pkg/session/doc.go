// Package session ties a form store to the file surface: importing a schema
// from a user-selected file, exporting the active schema as a download and
// submitting the form, with the outcome of each reported as a notice.
//
// A Manager keeps a bounded set of sessions keyed by id for shells that
// serve many users at once.
package session

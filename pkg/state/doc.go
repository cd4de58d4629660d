// Package state holds the mutable side of a form session. Every mutation goes
// through a Store method; callers only ever see copies.
package state

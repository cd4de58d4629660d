// Package fileio is the file surface of a form session: reading a
// user-selected file as text and handing text back to the user as a named
// download.
package fileio

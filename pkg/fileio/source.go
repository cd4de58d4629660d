package fileio

import (
	"io"
	"mime/multipart"
	"strings"
)

// SourceKind enumerates the supported handle types.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindFS     SourceKind = "fs"
	SourceKindURL    SourceKind = "url"
	SourceKindUpload SourceKind = "upload"
	SourceKindStream SourceKind = "stream"
)

// Source identifies a user-selected file to read.
type Source interface {
	Kind() SourceKind
	Location() string
}

// opener is implemented by sources that carry their own content.
type opener interface {
	open() (io.ReadCloser, error)
}

type pathSource struct {
	kind     SourceKind
	location string
}

func (s pathSource) Kind() SourceKind { return s.kind }
func (s pathSource) Location() string { return s.location }

// SourceFromFile references a path on the local file system.
func SourceFromFile(path string) Source {
	return pathSource{kind: SourceKindFile, location: path}
}

// SourceFromFS references a path inside the fs.FS configured on the Reader.
func SourceFromFS(name string) Source {
	return pathSource{kind: SourceKindFS, location: strings.TrimPrefix(name, "/")}
}

// SourceFromURL references a remote document. Reading it requires a Reader
// configured with an HTTP client.
func SourceFromURL(url string) Source {
	return pathSource{kind: SourceKindURL, location: url}
}

type uploadSource struct {
	header *multipart.FileHeader
}

// SourceFromUpload wraps a file received in a multipart form post.
func SourceFromUpload(header *multipart.FileHeader) Source {
	return uploadSource{header: header}
}

func (s uploadSource) Kind() SourceKind { return SourceKindUpload }

func (s uploadSource) Location() string {
	if s.header == nil {
		return ""
	}
	return s.header.Filename
}

func (s uploadSource) open() (io.ReadCloser, error) {
	if s.header == nil {
		return nil, errNoUpload
	}
	return s.header.Open()
}

type streamSource struct {
	name string
	r    io.Reader
}

// SourceFromReader wraps an already open stream such as stdin. The stream is
// consumed by the first read.
func SourceFromReader(name string, r io.Reader) Source {
	return streamSource{name: name, r: r}
}

func (s streamSource) Kind() SourceKind { return SourceKindStream }
func (s streamSource) Location() string { return s.name }

func (s streamSource) open() (io.ReadCloser, error) {
	if s.r == nil {
		return nil, errNoStream
	}
	return io.NopCloser(s.r), nil
}

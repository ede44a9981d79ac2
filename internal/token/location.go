// Package token defines the lexeme and location types shared by every
// later stage of the pipeline: the lexer produces Tokens, the parser
// attaches Locations to AST nodes, and the analyzer threads them through
// to instructions and diagnostics.
package token

import "fmt"

// FileIndex is a process-wide append-only mapping of file paths to
// compact integer ids, so a Location can carry an int instead of a
// string. Lookups are read-only once parsing begins for a compile.
type FileIndex struct {
	paths []string
	ids   map[string]int
}

// NewFileIndex creates an empty index.
func NewFileIndex() *FileIndex {
	return &FileIndex{ids: make(map[string]int)}
}

// Intern returns the id for path, assigning a fresh one if this is the
// first time path has been seen.
func (fi *FileIndex) Intern(path string) int {
	if id, ok := fi.ids[path]; ok {
		return id
	}
	id := len(fi.paths)
	fi.paths = append(fi.paths, path)
	fi.ids[path] = id
	return id
}

// Path resolves an id back to its file path. Panics on an id that was
// never interned, since that would mean a Location escaped its index.
func (fi *FileIndex) Path(id int) string {
	if id < 0 || id >= len(fi.paths) {
		panic(fmt.Sprintf("token: file id %d not in index", id))
	}
	return fi.paths[id]
}

// Location is the (file, line, column) triple threaded through every
// lexeme, AST node, and instruction. Lines and columns are 1-based.
type Location struct {
	File   *FileIndex
	FileID int
	Line   int
	Column int
}

// NewLocation builds a Location against the given index.
func NewLocation(fi *FileIndex, fileID, line, column int) Location {
	return Location{File: fi, FileID: fileID, Line: line, Column: column}
}

// FilePath resolves the location's file id through its index.
func (l Location) FilePath() string {
	if l.File == nil {
		return ""
	}
	return l.File.Path(l.FileID)
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.FilePath(), l.Line, l.Column)
}

// IsZero reports whether the location was never set.
func (l Location) IsZero() bool {
	return l.Line == 0 && l.Column == 0
}

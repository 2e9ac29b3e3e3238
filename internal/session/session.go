package session

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned for unknown or expired session IDs
var ErrNotFound = errors.New("session not found")

// FileKind names one of the two uploaded workbooks
type FileKind string

const (
	FileEvents   FileKind = "events"
	FileClusters FileKind = "clusters"
)

// ParseFileKind validates a file kind from a request path
func ParseFileKind(s string) (FileKind, error) {
	switch FileKind(s) {
	case FileEvents, FileClusters:
		return FileKind(s), nil
	}
	return "", fmt.Errorf("unknown file kind %q", s)
}

// File is an uploaded workbook held in memory
type File struct {
	Name       string    `json:"name"`
	Size       int       `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
	Data       []byte    `json:"-"`
}

// Session holds the source files of one user
type Session struct {
	ID         string             `json:"session_id"`
	CreatedAt  time.Time          `json:"created_at"`
	LastAccess time.Time          `json:"last_access"`
	Files      map[FileKind]*File `json:"files"`
}

// File returns the uploaded file of kind, or nil
func (s *Session) File(kind FileKind) *File {
	if s == nil || s.Files == nil {
		return nil
	}
	return s.Files[kind]
}

// Missing lists the file kinds not uploaded yet
func (s *Session) Missing() []FileKind {
	var missing []FileKind
	for _, kind := range []FileKind{FileEvents, FileClusters} {
		if s.File(kind) == nil {
			missing = append(missing, kind)
		}
	}
	return missing
}

// Store keeps sessions isolated from each other
type Store interface {
	Create() (*Session, error)
	Get(id string) (*Session, error)
	PutFile(id string, kind FileKind, file File) error
	Delete(id string) error
	CleanupExpired(ttl time.Duration) int
	Count() int
}

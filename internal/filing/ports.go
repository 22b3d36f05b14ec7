package filing

import (
	"context"
	"time"
)

// Attachment is a single attachment of an inbox message. Content is fetched
// lazily; the engine only downloads attachments it has decided to place.
type Attachment interface {
	// Name returns the attachment's filename as sent.
	Name() string
	// ContentType returns the declared MIME type (e.g. "application/pdf").
	ContentType() string
	// Bytes downloads the attachment content.
	Bytes(ctx context.Context) ([]byte, error)
}

// Message is one message of an inbox thread.
type Message interface {
	ID() string
	Subject() string
	// BodyText returns the plain-text body, or "" if none could be extracted.
	BodyText() string
	Unread() bool
	// Received returns the message's arrival time, used to order messages
	// oldest-first so that sequence numbers reflect chronological arrival.
	Received() time.Time
	Attachments() []Attachment
}

// Thread is an inbox conversation.
type Thread interface {
	ID() string
	// Messages returns the thread's messages. Order is not guaranteed by the
	// backend; callers must sort by Received before processing.
	Messages(ctx context.Context) ([]Message, error)
}

// MailStore is the inbound mail capability consumed by the engine.
type MailStore interface {
	// Search returns the threads matching the store's query language.
	Search(ctx context.Context, query string) ([]Thread, error)
	// MarkThreadRead clears the unread flag on every message of a thread.
	MarkThreadRead(ctx context.Context, threadID string) error
}

// File is a handle to a stored file.
type File interface {
	ID() string
	Name() string
	// WebViewLink returns a shareable link to the file, or "" if unknown.
	WebViewLink() string
	Rename(ctx context.Context, name string) error
	MoveTo(ctx context.Context, folder Folder) error
}

// Folder is a handle to a storage folder.
type Folder interface {
	ID() string
	// FilesNamed returns the direct children with exactly the given name.
	FilesNamed(ctx context.Context, name string) ([]File, error)
	// Files returns all direct child files (not folders).
	Files(ctx context.Context) ([]File, error)
	// EnsureFolder returns the direct child folder with the given name,
	// creating it if absent.
	EnsureFolder(ctx context.Context, name string) (Folder, error)
	// CreateFile creates a new file with the given name and content.
	CreateFile(ctx context.Context, name string, content []byte) (File, error)
}

// FileStore resolves folder handles by backend identifier.
type FileStore interface {
	Folder(ctx context.Context, id string) (Folder, error)
}

// StateStore persists scalar run state as strings. Get returns "" with a
// nil error for missing keys; values are parsed defensively by the caller.
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Locker bounds the system to one concurrent run. TryAcquire waits at most
// the given duration; a false return means another run is active and is not
// an error. Release must be called exactly once per successful acquisition.
type Locker interface {
	TryAcquire(timeout time.Duration) bool
	Release()
}

// Notification describes a freshly filed driver document.
type Notification struct {
	Title    string
	Text     string
	FileLink string
}

// Notifier delivers fire-and-forget notifications. Failures are logged by
// the caller and never affect the run outcome.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

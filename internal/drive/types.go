package drive

import "time"

// FileInfo represents metadata about a Google Drive file or folder
type FileInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size,omitempty"`
	CreatedTime  time.Time `json:"createdTime,omitempty"`
	ModifiedTime time.Time `json:"modifiedTime,omitempty"`
	WebViewLink  string    `json:"webViewLink,omitempty"`
	Parents      []string  `json:"parents,omitempty"`
	Trashed      bool      `json:"trashed,omitempty"`
}

// IsFolder reports whether the file is a Drive folder.
func (f *FileInfo) IsFolder() bool {
	return f.MimeType == FolderMimeType
}

// MoveOptions contains options for moving or renaming a file
type MoveOptions struct {
	NewName       string   // New name for the file (empty keeps the current name)
	AddParents    []string // Folder IDs to add as parents
	RemoveParents []string // Folder IDs to remove as parents
}

package drive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/docfiler/internal/google"
	"github.com/teemow/docfiler/internal/instrumentation"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	fileFields = "id, name, mimeType, size, createdTime, modifiedTime, webViewLink, parents, trashed"
	listFields = "nextPageToken, files(id, name, mimeType, size, createdTime, modifiedTime, webViewLink, parents, trashed)"
)

// Client wraps the Google Drive API service
type Client struct {
	service *drive.Service
	limiter *google.RateLimiter
	observe *google.APIObserver
	account string
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// SetMetrics attaches an instrumentation recorder; every API call is then
// recorded as a google_api operation with a client span around it.
func (c *Client) SetMetrics(metrics *instrumentation.Metrics) {
	c.observe = google.NewAPIObserver(google.ServiceDrive, metrics)
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// NewClientForAccount creates a new Google Drive client with OAuth2
// authentication for a specific account. Returns an error if no valid token
// exists; use HasTokenForAccount to check first.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	driveService, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		service: driveService,
		limiter: google.NewRateLimiter(google.ServiceDrive),
		account: account,
	}, nil
}

// escapeQueryTerm escapes a string literal for use in a Drive query.
func escapeQueryTerm(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// GetFile retrieves metadata for a specific file
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var file *drive.File
	err := c.observe.Observe(ctx, "get", func(ctx context.Context) error {
		var err error
		file, err = c.service.Files.Get(fileID).
			Context(ctx).
			Fields(fileFields).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", fileID, err)
	}

	return convertToFileInfo(file), nil
}

// ListChildren lists the direct children of a folder, optionally restricted
// by exact name or MIME type. Trashed items are always excluded.
func (c *Client) ListChildren(ctx context.Context, folderID, name, mimeType string) ([]*FileInfo, error) {
	if folderID == "" {
		return nil, fmt.Errorf("folderID is required")
	}

	terms := []string{
		fmt.Sprintf("'%s' in parents", escapeQueryTerm(folderID)),
		"trashed=false",
	}
	if name != "" {
		terms = append(terms, fmt.Sprintf("name='%s'", escapeQueryTerm(name)))
	}
	if mimeType != "" {
		terms = append(terms, fmt.Sprintf("mimeType='%s'", mimeType))
	}

	var files []*FileInfo
	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		var fileList *drive.FileList
		err := c.observe.Observe(ctx, "list", func(ctx context.Context) error {
			call := c.service.Files.List().
				Context(ctx).
				Q(strings.Join(terms, " and ")).
				Fields(listFields)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var err error
			fileList, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list children of %s: %w", folderID, err)
		}
		for _, f := range fileList.Files {
			files = append(files, convertToFileInfo(f))
		}
		if fileList.NextPageToken == "" {
			return files, nil
		}
		pageToken = fileList.NextPageToken
	}
}

// CreateFolder creates a new folder under the given parent
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}

	file := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
	}
	if parentID != "" {
		file.Parents = []string{parentID}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var driveFile *drive.File
	err := c.observe.Observe(ctx, "create", func(ctx context.Context) error {
		var err error
		driveFile, err = c.service.Files.Create(file).
			Context(ctx).
			Fields(fileFields).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	return convertToFileInfo(driveFile), nil
}

// UploadFile uploads a new file into the given parent folder
func (c *Client) UploadFile(ctx context.Context, name, parentID, mimeType string, content []byte) (*FileInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}

	file := &drive.File{
		Name:     name,
		MimeType: mimeType,
	}
	if parentID != "" {
		file.Parents = []string{parentID}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var driveFile *drive.File
	err := c.observe.Observe(ctx, "create", func(ctx context.Context) error {
		var err error
		driveFile, err = c.service.Files.Create(file).
			Context(ctx).
			Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
			Fields(fileFields).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return convertToFileInfo(driveFile), nil
}

// MoveFile moves or renames a file
func (c *Client) MoveFile(ctx context.Context, fileID string, options *MoveOptions) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if options == nil {
		return nil, fmt.Errorf("move options are required")
	}

	update := &drive.File{}
	if options.NewName != "" {
		update.Name = options.NewName
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var driveFile *drive.File
	err := c.observe.Observe(ctx, "update", func(ctx context.Context) error {
		call := c.service.Files.Update(fileID, update).
			Context(ctx).
			Fields(fileFields)

		if len(options.AddParents) > 0 {
			call = call.AddParents(strings.Join(options.AddParents, ","))
		}
		if len(options.RemoveParents) > 0 {
			call = call.RemoveParents(strings.Join(options.RemoveParents, ","))
		}

		var err error
		driveFile, err = call.Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to move file: %w", err)
	}

	return convertToFileInfo(driveFile), nil
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	fileInfo := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		WebViewLink: f.WebViewLink,
		Parents:     f.Parents,
		Trashed:     f.Trashed,
	}

	if f.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
			fileInfo.CreatedTime = t
		}
	}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			fileInfo.ModifiedTime = t
		}
	}

	return fileInfo
}

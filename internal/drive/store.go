package drive

import (
	"context"
	"fmt"
	"net/http"

	"github.com/teemow/docfiler/internal/filing"
)

// Store adapts a Drive Client to the filing package's storage interfaces.
type Store struct {
	client *Client
}

// NewStore creates a file store backed by the given client.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// Folder resolves a folder handle by Drive file ID.
func (s *Store) Folder(ctx context.Context, id string) (filing.Folder, error) {
	info, err := s.client.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if !info.IsFolder() {
		return nil, fmt.Errorf("drive file %s is not a folder", id)
	}
	return &folder{store: s, id: info.ID}, nil
}

type folder struct {
	store *Store
	id    string
}

func (f *folder) ID() string {
	return f.id
}

func (f *folder) FilesNamed(ctx context.Context, name string) ([]filing.File, error) {
	infos, err := f.store.client.ListChildren(ctx, f.id, name, "")
	if err != nil {
		return nil, err
	}
	return f.store.filesOf(infos), nil
}

func (f *folder) Files(ctx context.Context) ([]filing.File, error) {
	infos, err := f.store.client.ListChildren(ctx, f.id, "", "")
	if err != nil {
		return nil, err
	}
	return f.store.filesOf(infos), nil
}

func (f *folder) EnsureFolder(ctx context.Context, name string) (filing.Folder, error) {
	infos, err := f.store.client.ListChildren(ctx, f.id, name, FolderMimeType)
	if err != nil {
		return nil, err
	}
	if len(infos) > 0 {
		return &folder{store: f.store, id: infos[0].ID}, nil
	}
	info, err := f.store.client.CreateFolder(ctx, name, f.id)
	if err != nil {
		return nil, err
	}
	return &folder{store: f.store, id: info.ID}, nil
}

func (f *folder) CreateFile(ctx context.Context, name string, content []byte) (filing.File, error) {
	info, err := f.store.client.UploadFile(ctx, name, f.id, http.DetectContentType(content), content)
	if err != nil {
		return nil, err
	}
	return newFile(f.store, info), nil
}

// filesOf converts child listings into file handles, skipping subfolders.
func (s *Store) filesOf(infos []*FileInfo) []filing.File {
	var files []filing.File
	for _, info := range infos {
		if info.IsFolder() {
			continue
		}
		files = append(files, newFile(s, info))
	}
	return files
}

type file struct {
	store   *Store
	id      string
	name    string
	link    string
	parents []string
}

func newFile(store *Store, info *FileInfo) *file {
	return &file{
		store:   store,
		id:      info.ID,
		name:    info.Name,
		link:    info.WebViewLink,
		parents: info.Parents,
	}
}

func (f *file) ID() string {
	return f.id
}

func (f *file) Name() string {
	return f.name
}

func (f *file) WebViewLink() string {
	return f.link
}

func (f *file) Rename(ctx context.Context, name string) error {
	info, err := f.store.client.MoveFile(ctx, f.id, &MoveOptions{NewName: name})
	if err != nil {
		return err
	}
	f.name = info.Name
	return nil
}

func (f *file) MoveTo(ctx context.Context, target filing.Folder) error {
	info, err := f.store.client.MoveFile(ctx, f.id, &MoveOptions{
		AddParents:    []string{target.ID()},
		RemoveParents: f.parents,
	})
	if err != nil {
		return err
	}
	f.parents = info.Parents
	return nil
}

package filing

import (
	"context"
	"fmt"
	"time"
)

// In-memory fakes for the capability interfaces. They model just enough of
// the real backends for deterministic engine tests.

type fakeAttachment struct {
	name  string
	ctype string
	data  []byte
	err   error
}

func (a *fakeAttachment) Name() string        { return a.name }
func (a *fakeAttachment) ContentType() string { return a.ctype }
func (a *fakeAttachment) Bytes(context.Context) ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.data, nil
}

func pdf(name string) *fakeAttachment {
	return &fakeAttachment{name: name, ctype: "application/pdf", data: []byte(name)}
}

type fakeMessage struct {
	id       string
	subject  string
	body     string
	unread   bool
	received time.Time
	atts     []Attachment
}

func (m *fakeMessage) ID() string                { return m.id }
func (m *fakeMessage) Subject() string           { return m.subject }
func (m *fakeMessage) BodyText() string          { return m.body }
func (m *fakeMessage) Unread() bool              { return m.unread }
func (m *fakeMessage) Received() time.Time       { return m.received }
func (m *fakeMessage) Attachments() []Attachment { return m.atts }

type fakeThread struct {
	id   string
	msgs []Message
	err  error
}

func (t *fakeThread) ID() string { return t.id }
func (t *fakeThread) Messages(context.Context) ([]Message, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.msgs, nil
}

type fakeMail struct {
	threads   []Thread
	markedRead []string
	searchErr error
	markErr   error
}

func (m *fakeMail) Search(_ context.Context, _ string) ([]Thread, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.threads, nil
}

func (m *fakeMail) MarkThreadRead(_ context.Context, threadID string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.markedRead = append(m.markedRead, threadID)
	return nil
}

type fakeFile struct {
	id     string
	name   string
	link   string
	data   []byte
	folder *fakeFolder
}

func (f *fakeFile) ID() string          { return f.id }
func (f *fakeFile) Name() string        { return f.name }
func (f *fakeFile) WebViewLink() string { return f.link }

func (f *fakeFile) Rename(_ context.Context, name string) error {
	f.name = name
	return nil
}

func (f *fakeFile) MoveTo(_ context.Context, folder Folder) error {
	dst, ok := folder.(*fakeFolder)
	if !ok {
		return fmt.Errorf("moving to unknown folder type %T", folder)
	}
	src := f.folder
	for i, other := range src.files {
		if other == f {
			src.files = append(src.files[:i], src.files[i+1:]...)
			break
		}
	}
	dst.files = append(dst.files, f)
	f.folder = dst
	return nil
}

type fakeFolder struct {
	id      string
	files   []*fakeFile
	folders map[string]*fakeFolder
	nextID  *int
}

func newFakeFolder(id string) *fakeFolder {
	n := 0
	return &fakeFolder{id: id, folders: make(map[string]*fakeFolder), nextID: &n}
}

func (d *fakeFolder) ID() string { return d.id }

func (d *fakeFolder) FilesNamed(_ context.Context, name string) ([]File, error) {
	var out []File
	for _, f := range d.files {
		if f.name == name {
			out = append(out, f)
		}
	}
	return out, nil
}

func (d *fakeFolder) Files(context.Context) ([]File, error) {
	out := make([]File, len(d.files))
	for i, f := range d.files {
		out[i] = f
	}
	return out, nil
}

func (d *fakeFolder) EnsureFolder(_ context.Context, name string) (Folder, error) {
	if sub, ok := d.folders[name]; ok {
		return sub, nil
	}
	sub := newFakeFolder(d.id + "/" + name)
	sub.nextID = d.nextID
	d.folders[name] = sub
	return sub, nil
}

func (d *fakeFolder) CreateFile(_ context.Context, name string, content []byte) (File, error) {
	*d.nextID++
	f := &fakeFile{
		id:     fmt.Sprintf("file-%d", *d.nextID),
		name:   name,
		link:   fmt.Sprintf("https://files.example/%s/%d", name, *d.nextID),
		data:   content,
		folder: d,
	}
	d.files = append(d.files, f)
	return f, nil
}

// names returns the current file names of the folder, in placement order.
func (d *fakeFolder) names() []string {
	out := make([]string, len(d.files))
	for i, f := range d.files {
		out[i] = f.name
	}
	return out
}

type fakeFileStore struct {
	root *fakeFolder
}

func (s *fakeFileStore) Folder(_ context.Context, id string) (Folder, error) {
	if id != s.root.id {
		return nil, fmt.Errorf("unknown folder %s", id)
	}
	return s.root, nil
}

type fakeState struct {
	m      map[string]string
	getErr error
	setErr error
}

func newFakeState() *fakeState {
	return &fakeState{m: make(map[string]string)}
}

func (s *fakeState) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.m[key], nil
}

func (s *fakeState) Set(_ context.Context, key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.m[key] = value
	return nil
}

type fakeNotifier struct {
	notes []Notification
	err   error
}

func (n *fakeNotifier) Notify(_ context.Context, note Notification) error {
	if n.err != nil {
		return n.err
	}
	n.notes = append(n.notes, note)
	return nil
}

// stuckLock is a Locker that is never available.
type stuckLock struct{}

func (stuckLock) TryAcquire(time.Duration) bool { return false }
func (stuckLock) Release()                      {}

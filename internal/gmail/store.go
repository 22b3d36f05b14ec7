package gmail

import (
	"context"
	"fmt"
	"mime"
	"time"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/docfiler/internal/filing"
)

// Store adapts a Gmail Client to the filing.MailStore interface. Threads
// returned from Search are lazy; their messages are fetched on demand.
type Store struct {
	client *Client
}

// NewStore creates a mail store backed by the given client.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// Search returns the threads matching the Gmail query.
func (s *Store) Search(ctx context.Context, query string) ([]filing.Thread, error) {
	var threads []filing.Thread
	err := s.client.ForeachThread(ctx, query, func(t *gmail.Thread) error {
		threads = append(threads, &thread{client: s.client, id: t.Id})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search threads: %w", err)
	}
	return threads, nil
}

// MarkThreadRead clears the unread flag on every message of a thread.
func (s *Store) MarkThreadRead(ctx context.Context, threadID string) error {
	return s.client.MarkThreadRead(ctx, threadID)
}

type thread struct {
	client *Client
	id     string
}

func (t *thread) ID() string {
	return t.id
}

func (t *thread) Messages(ctx context.Context) ([]filing.Message, error) {
	full, err := t.client.GetThread(ctx, t.id)
	if err != nil {
		return nil, err
	}
	msgs := make([]filing.Message, 0, len(full.Messages))
	for _, m := range full.Messages {
		msgs = append(msgs, newMessage(t.client, m))
	}
	return msgs, nil
}

type message struct {
	client *Client
	raw    *gmail.Message
}

func newMessage(client *Client, raw *gmail.Message) *message {
	return &message{client: client, raw: raw}
}

func (m *message) ID() string {
	return m.raw.Id
}

func (m *message) Subject() string {
	return HeaderValue(m.raw, "Subject")
}

func (m *message) BodyText() string {
	return MessageBody(m.raw)
}

func (m *message) Unread() bool {
	for _, label := range m.raw.LabelIds {
		if label == "UNREAD" {
			return true
		}
	}
	return false
}

func (m *message) Received() time.Time {
	return time.UnixMilli(m.raw.InternalDate)
}

func (m *message) Attachments() []filing.Attachment {
	var atts []filing.Attachment
	if m.raw.Payload == nil {
		return atts
	}
	walkParts(m.raw.Payload, func(part *gmail.MessagePart) {
		if part.Filename == "" || part.Body == nil || part.Body.AttachmentId == "" {
			return
		}
		atts = append(atts, &attachment{
			client:       m.client,
			messageID:    m.raw.Id,
			attachmentID: part.Body.AttachmentId,
			name:         part.Filename,
			contentType:  partContentType(part),
		})
	})
	return atts
}

// partContentType returns the part's MIME type without parameters.
func partContentType(part *gmail.MessagePart) string {
	mt, _, err := mime.ParseMediaType(part.MimeType)
	if err != nil {
		return part.MimeType
	}
	return mt
}

type attachment struct {
	client       *Client
	messageID    string
	attachmentID string
	name         string
	contentType  string
}

func (a *attachment) Name() string {
	return a.name
}

func (a *attachment) ContentType() string {
	return a.contentType
}

func (a *attachment) Bytes(ctx context.Context) ([]byte, error) {
	return a.client.GetAttachment(ctx, a.messageID, a.attachmentID)
}

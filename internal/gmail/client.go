package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/docfiler/internal/google"
	"github.com/teemow/docfiler/internal/instrumentation"
)

const (
	// MaxAttachmentSize defines the maximum attachment size in bytes (25MB)
	MaxAttachmentSize = 25 * 1024 * 1024
)

// Client wraps the Gmail Users service
type Client struct {
	svc     *gmail.UsersService
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
	c.observe = google.NewAPIObserver(google.ServiceGmail, metrics)
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// NewClientForAccount creates a new Gmail client with OAuth2 authentication
// for a specific account
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		limiter: google.NewRateLimiter(google.ServiceGmail),
		account: account,
	}, nil
}

// ForeachThread iterates over all threads matching the query
func (c *Client) ForeachThread(ctx context.Context, q string, fn func(*gmail.Thread) error) error {
	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		var res *gmail.ListThreadsResponse
		err := c.observe.Observe(ctx, "list", func(ctx context.Context) error {
			req := c.svc.Threads.List("me").Q(q).Context(ctx)
			if pageToken != "" {
				req.PageToken(pageToken)
			}
			var err error
			res, err = req.Do()
			return err
		})
		if err != nil {
			return err
		}
		for _, t := range res.Threads {
			if err := fn(t); err != nil {
				return err
			}
		}
		if res.NextPageToken == "" {
			return nil
		}
		pageToken = res.NextPageToken
	}
}

// GetThread retrieves a full Gmail thread with all its messages
func (c *Client) GetThread(ctx context.Context, threadID string) (*gmail.Thread, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var thread *gmail.Thread
	err := c.observe.Observe(ctx, "get", func(ctx context.Context) error {
		var err error
		thread, err = c.svc.Threads.Get("me", threadID).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}
	return thread, nil
}

// MarkThreadRead clears the unread flag on every message of a thread
func (c *Client) MarkThreadRead(ctx context.Context, threadID string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := c.observe.Observe(ctx, "modify", func(ctx context.Context) error {
		_, err := c.svc.Threads.Modify("me", threadID, &gmail.ModifyThreadRequest{
			RemoveLabelIds: []string{"UNREAD"},
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to mark thread %s read: %w", threadID, err)
	}
	return nil
}

// GetAttachment retrieves the content of an attachment (returns []byte)
func (c *Client) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if attachmentID == "" {
		return nil, fmt.Errorf("attachmentID is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var attachment *gmail.MessagePartBody
	err := c.observe.Observe(ctx, "get", func(ctx context.Context) error {
		var err error
		attachment, err = c.svc.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", attachmentID, err)
	}

	if attachment.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", attachment.Size, MaxAttachmentSize)
	}

	return decodeBase64(attachment.Data)
}

// decodeBase64 decodes base64url-encoded data (Gmail API uses RFC 4648
// base64url encoding), falling back to standard base64.
func decodeBase64(data string) ([]byte, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode attachment data: %w", err)
		}
	}
	return decoded, nil
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// HeaderValue extracts a header value from a Gmail message
func HeaderValue(m *gmail.Message, header string) string {
	mpart := m.Payload
	if mpart == nil {
		return ""
	}
	for _, mph := range mpart.Headers {
		if mph.Name == header {
			return mph.Value
		}
	}
	return ""
}

// MessageBody extracts the plain-text body from an already-fetched message,
// or "" if none could be decoded.
func MessageBody(m *gmail.Message) string {
	if m.Payload == nil {
		return ""
	}

	var data string
	if m.Payload.MimeType == "text/plain" && m.Payload.Body != nil && m.Payload.Body.Data != "" {
		data = m.Payload.Body.Data
	} else {
		walkParts(m.Payload, func(part *gmail.MessagePart) {
			if data == "" && part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
				data = part.Body.Data
			}
		})
	}
	if data == "" {
		return ""
	}

	decoded, err := decodeBase64(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}

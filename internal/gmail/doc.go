// Package gmail provides the Gmail-backed mail store adapter for the
// filing engine.
//
// The Client wraps the Gmail Users service with the operations the engine
// needs: searching threads, loading full messages, downloading attachments
// and clearing the unread flag. The Store type adapts those operations to
// the filing.MailStore capability interface; attachment content is fetched
// lazily, only for attachments the engine decides to place.
package gmail

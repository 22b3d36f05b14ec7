package google

// DefaultOAuthScopes are the Google OAuth scopes the filing job needs:
// Gmail read/modify (search unread threads, download attachments, mark
// read) and Drive (place, move and share files in the document tree).
var DefaultOAuthScopes = []string{
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/drive",
}

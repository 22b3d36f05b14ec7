// Package google provides shared OAuth2 authentication for the Google API
// clients in the gmail and drive packages.
//
// Tokens are cached on disk per account under the user cache directory and
// refreshed automatically through the oauth2 token source.
package google

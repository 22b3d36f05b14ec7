// Package drive provides Google Drive integration for document filing.
//
// The package wraps the Drive v3 API with a rate-limited Client for folder
// and file manipulation, and a Store adapter that exposes the Drive folder
// tree through the filing package's storage interfaces.
package drive

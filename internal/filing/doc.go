// Package filing implements the classification and reconciliation engine
// that turns unread inbox messages with PDF attachments into a curated
// folder tree of "latest version" documents.
//
// The engine is pure logic over narrow capability interfaces (see ports.go):
// a mail store, a file store, a key-value state store, a run lock and an
// optional notifier. Production adapters for Gmail and Google Drive live in
// the sibling gmail and drive packages; tests inject in-memory fakes.
//
// One run is driven by the Coordinator: it acquires the run lock, loads the
// persisted run state, enumerates unread threads, classifies each message's
// attachments against the static rule table, places documents through the
// promote-and-archive reconciler, and finally marks consumed threads read.
// Day rollover (archiving the previous day's "latest" files) is deferred to
// the moment the first call sheet of a new day actually arrives, so a day
// without arrivals never disturbs the current files.
package filing

// Package socialgraph fetches and stores a user's Facebook friends and
// likes.
//
// Storage is append-only: every merge inserts only the records whose
// external ids are not yet present and never touches existing rows, so
// re-running an import with identical input is a no-op. Stores tolerate
// duplicate keys at the insert level as well, which keeps concurrent
// imports for the same user safe.
//
// Imports run inline through Importer, or in the background via task
// payloads processed by pkg/queue workers. Hooks registered on the
// Importer observe each merge, for cache busting or follow-up processing.
package socialgraph

// Package docs declares the calling convention for the document-storage
// collaborator and the markdown fragments appended through it. The real
// transport lives outside this core; only the contract is defined here.
package docs

import "context"

// Client is the document-storage collaborator. Implementations are
// expected to resolve their own auth (via the token manager) and their
// own retry policy; this core does neither for them.
type Client interface {
	// CreateDocument creates a new document and returns its id.
	CreateDocument(ctx context.Context, title string) (string, error)

	// GetDocument returns the document's title. A not-found error is
	// the signal the registry uses to detect an externally deleted
	// document.
	GetDocument(ctx context.Context, documentID string) (string, error)

	// AppendContent appends text to the end of the document.
	AppendContent(ctx context.Context, documentID, text string) error
}

package docsfake

import (
	"context"
	"fmt"
	"sync"

	"github.com/bishnubista/vibe-logger/docs"
	apperrors "github.com/bishnubista/vibe-logger/internal/errors"
	"github.com/pkg/errors"
)

var _ docs.Client = (*FakeDocClient)(nil)

// FakeDocClient is an in-memory document collaborator for tests.
type FakeDocClient struct {
	lock      sync.Mutex
	nextID    int
	titles    map[string]string
	bodies    map[string]string
	CreateErr error
}

func NewFakeDocClient() *FakeDocClient {
	return &FakeDocClient{
		titles: make(map[string]string),
		bodies: make(map[string]string),
	}
}

func (c *FakeDocClient) CreateDocument(_ context.Context, title string) (string, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.CreateErr != nil {
		return "", c.CreateErr
	}
	c.nextID++
	id := fmt.Sprintf("doc-%d", c.nextID)
	c.titles[id] = title
	return id, nil
}

func (c *FakeDocClient) GetDocument(_ context.Context, documentID string) (string, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	title, ok := c.titles[documentID]
	if !ok {
		return "", errors.Wrap(apperrors.ErrDocumentMissing, documentID)
	}
	return title, nil
}

func (c *FakeDocClient) AppendContent(_ context.Context, documentID, text string) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if _, ok := c.titles[documentID]; !ok {
		return errors.Wrap(apperrors.ErrDocumentMissing, documentID)
	}
	c.bodies[documentID] += text
	return nil
}

// Body returns the accumulated content of a document.
func (c *FakeDocClient) Body(documentID string) string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.bodies[documentID]
}

// Delete removes a document, simulating external deletion.
func (c *FakeDocClient) Delete(documentID string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	delete(c.titles, documentID)
	delete(c.bodies, documentID)
}

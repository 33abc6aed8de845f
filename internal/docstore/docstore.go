// Package docstore persists whole collections as single JSON documents.
//
// Every mutation is a read-modify-write of the full document, so a Collection
// serializes writers behind one lock. Backends only need whole-object reads and
// replacing writes: a local directory or an S3 bucket.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"FreshBasket/pkg/apperr"
	"FreshBasket/pkg/kit"
)

// ErrNotExist is returned by a Backend for a document that was never written.
var ErrNotExist = errors.New("document does not exist")

type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Ping(ctx context.Context) error
}

// Collection is one JSON document of type T.
type Collection[T any] struct {
	mu      sync.RWMutex
	backend Backend
	name    string
	timeout time.Duration
}

func NewCollection[T any](b Backend, name string, timeout time.Duration) *Collection[T] {
	return &Collection[T]{backend: b, name: name + ".json", timeout: timeout}
}

func (c *Collection[T]) Name() string { return c.name }

// Load decodes the document. ok is false when it has never been written.
func (c *Collection[T]) Load(ctx context.Context) (doc T, ok bool, err error) {
	ctx, span := kit.StartSpan(ctx, "docstore.load", attribute.String("docstore.collection", c.name))
	defer func() { kit.EndSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.read(ctx)
}

// Update runs fn on the current document and writes the result back.
// fn sees ok=false and a zero document when nothing was stored yet.
// Returning an error from fn aborts without writing.
func (c *Collection[T]) Update(ctx context.Context, fn func(doc *T, ok bool) error) (err error) {
	ctx, span := kit.StartSpan(ctx, "docstore.update", attribute.String("docstore.collection", c.name))
	defer func() { kit.EndSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok, err := c.read(ctx)
	if err != nil {
		return err
	}
	if err := fn(&doc, ok); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	if err := c.backend.Write(ctx, c.name, data); err != nil {
		return apperr.Unavailable("docstore write "+c.name, err)
	}
	return nil
}

func (c *Collection[T]) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return apperr.Unavailable("docstore ping", c.backend.Ping(ctx))
}

func (c *Collection[T]) read(ctx context.Context) (T, bool, error) {
	var doc T

	data, err := c.backend.Read(ctx, c.name)
	if errors.Is(err, ErrNotExist) {
		return doc, false, nil
	}
	if err != nil {
		return doc, false, apperr.Unavailable("docstore read "+c.name, err)
	}
	if len(data) == 0 {
		return doc, false, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, false, apperr.Unavailable("docstore decode "+c.name, err)
	}
	return doc, true, nil
}

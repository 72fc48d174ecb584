package commonsense

import (
	"context"
)

// API defines the interface for Common Sense API operations
type API interface {
	// GetList retrieves a page of items of a content type
	GetList(ctx context.Context, t ContentType, opts Options) (*Result, error)

	// GetItem retrieves a single item by ID
	GetItem(ctx context.Context, t ContentType, id string, opts Options) (*Result, error)

	// Search performs a text search on a content type
	Search(ctx context.Context, t ContentType, q string, opts Options) (*Result, error)

	// GetTermsList retrieves the terms of a taxonomy vocabulary
	GetTermsList(ctx context.Context, vocabulary string, opts Options) (*Result, error)

	// GetItems fetches several items concurrently
	GetItems(ctx context.Context, t ContentType, ids []string, opts Options) BatchResult

	// TestConnection verifies the client can reach the API
	TestConnection(ctx context.Context) error
}

var _ API = (*Client)(nil)

package commonsense

import "context"

// Collection binds a content type to a client.
type Collection struct {
	client *Client
	Type   ContentType
}

// Collection returns the collection of the given content type.
func (c *Client) Collection(t ContentType) *Collection {
	return &Collection{client: c, Type: t}
}

// List retrieves a page of the collection.
func (col *Collection) List(ctx context.Context, opts Options) (*Result, error) {
	return col.client.GetList(ctx, col.Type, opts)
}

// Item retrieves a single item of the collection.
func (col *Collection) Item(ctx context.Context, id string, opts Options) (*Result, error) {
	return col.client.GetItem(ctx, col.Type, id, opts)
}

// Search performs a text search within the collection.
func (col *Collection) Search(ctx context.Context, q string, opts Options) (*Result, error) {
	return col.client.Search(ctx, col.Type, q, opts)
}

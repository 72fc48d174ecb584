// Package commonsense provides a client for the Common Sense content catalog API.
//
// The API is read-only and split into platforms (education, media) that share
// one protocol: GET {host}/v{version}/{platform}/{path}?{query}. Every call
// builds its query from three sources, in order:
//
//   - identity parameters, when credentials travel in the query
//   - the defaults limit=10 and page=1, overridden by valid caller values
//   - fields (comma-joined, omitted when empty) and pass-through filters
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := commonsense.NewClient(commonsense.Config{
//		ClientID: "client",
//		AppID:    "app",
//		Platform: commonsense.PlatformEducation,
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := client.Products().List(ctx, commonsense.Options{
//		"limit":  5,
//		"fields": []string{"id", "title", "subjects"},
//		"tree":   []string{"subjects"},
//	})
//
// # Term trees
//
// Taxonomy fields arrive as flat lists of terms linked by parent_id. Naming a
// field in the "tree" option nests it with BuildTermTree before the result is
// returned.
//
// # Error Handling
//
// Failures are *APIError values whose Kind is one of Unauthorized, NotFound,
// BadRequest, Unknown, ParseError or NetworkError. They match the package
// sentinels with errors.Is:
//
//	if errors.Is(err, commonsense.ErrNotFound) {
//		// Handle missing item
//	}
package commonsense

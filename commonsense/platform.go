package commonsense

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:generate go run ./internal/genwrappers -out collections_gen.go

// Platform is a named sub-API surface sharing the same base protocol.
type Platform string

const (
	// PlatformGlobal is the shared surface used before a platform is chosen
	PlatformGlobal Platform = "global"
	// PlatformEducation is the education catalog
	PlatformEducation Platform = "education"
	// PlatformMedia is the media catalog
	PlatformMedia Platform = "media"
)

// ContentType is a named resource category exposed via list/item/search.
type ContentType string

// Education catalog content types.
const (
	Products    ContentType = "products"
	Blogs       ContentType = "blogs"
	AppFlows    ContentType = "app_flows"
	Lists       ContentType = "lists"
	UserReviews ContentType = "user_reviews"
	Boards      ContentType = "boards"
	Schools     ContentType = "schools"
)

// variant holds the platform specific behaviour.
type variant struct {
	contentTypes []ContentType
	search       bool
	termsPath    string
}

var variants = map[Platform]variant{
	PlatformGlobal: {},
	PlatformEducation: {
		contentTypes: []ContentType{Products, Blogs, AppFlows, Lists, UserReviews, Boards, Schools},
		search:       true,
		termsPath:    "terms",
	},
	PlatformMedia: {},
}

// ParsePlatform converts a platform name into a Platform.
func ParsePlatform(name string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	if p == "" {
		return PlatformGlobal, nil
	}
	if _, ok := variants[p]; !ok {
		return "", fmt.Errorf("%w: unknown platform %q", ErrInvalidConfig, name)
	}
	return p, nil
}

// Platforms returns every known platform in a stable order.
func Platforms() []Platform {
	return []Platform{PlatformGlobal, PlatformEducation, PlatformMedia}
}

// String returns the path segment of the platform
func (p Platform) String() string {
	return string(p)
}

// ContentTypes returns the catalog of content types offered by the platform.
func (p Platform) ContentTypes() []ContentType {
	types := variants[p].contentTypes
	out := make([]ContentType, len(types))
	copy(out, types)
	return out
}

// HasContentType checks if the platform offers the given content type
func (p Platform) HasContentType(t ContentType) bool {
	for _, ct := range variants[p].contentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// SupportsSearch checks if the platform exposes text search
func (p Platform) SupportsSearch() bool {
	return variants[p].search
}

// SupportsTerms checks if the platform exposes taxonomy vocabularies
func (p Platform) SupportsTerms() bool {
	return variants[p].termsPath != ""
}

// AllContentTypes returns the content types of every platform, deduplicated.
func AllContentTypes() []ContentType {
	seen := make(map[ContentType]bool)
	var out []ContentType
	for _, p := range Platforms() {
		for _, t := range variants[p].contentTypes {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// String returns the path segment of the content type
func (t ContentType) String() string {
	return string(t)
}

// MethodName returns the camel-cased Go identifier for the content type,
// e.g. "app_flows" becomes "AppFlows".
func (t ContentType) MethodName() string {
	title := cases.Title(language.Und)
	var b strings.Builder
	for _, part := range strings.Split(strings.ToLower(string(t)), "_") {
		b.WriteString(title.String(part))
	}
	return b.String()
}

package champion

import "loltools/pkg/models/image"

// Struct for holding a champion data.
// ID is the numeric key used by the match data, NameKey the one used on the asset paths.
type Champion struct {
	ID      string      `json:"id"`
	NameKey string      `json:"key"`
	Name    string      `json:"name"`
	Title   string      `json:"title"`
	Image   image.Image `json:"image"`
	Tags    []string    `json:"tags,omitempty"`
}

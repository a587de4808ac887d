package domain

import "time"

// AssetKind distinguishes image assets from video assets.
type AssetKind string

// Asset kinds.
const (
	AssetKindImage AssetKind = "image"
	AssetKindVideo AssetKind = "video"
)

// Asset represents a persisted binary media object owned by a board's
// asset store. Assets are created by upload and never mutated in place.
type Asset struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	Locator   string    `json:"locator"` // retrievable URL-like handle for display
	Kind      AssetKind `json:"kind"`
	Filename  string    `json:"filename,omitempty"`
	Size      int64     `json:"size"`
	BlurHash  string    `json:"blur_hash,omitempty"` // placeholder preview, images only
	CreatedAt time.Time `json:"created_at"`
}

// IsImage reports whether the asset is an image.
func (a *Asset) IsImage() bool {
	return a.Kind == AssetKindImage
}

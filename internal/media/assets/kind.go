package assets

import (
	"path/filepath"
	"strings"

	"github.com/stockroomapp/stockroom-server/internal/domain"
)

// Recognized media extensions, lowercased.
var (
	imageExts = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true,
		".gif": true, ".webp": true, ".bmp": true,
	}
	videoExts = map[string]bool{
		".mp4": true, ".mov": true, ".webm": true,
		".mkv": true, ".avi": true, ".m4v": true,
	}
)

// KindForFilename classifies a filename as an image or video asset.
// The second return value is false for unsupported extensions.
func KindForFilename(filename string) (domain.AssetKind, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExts[ext]:
		return domain.AssetKindImage, true
	case videoExts[ext]:
		return domain.AssetKindVideo, true
	default:
		return "", false
	}
}

// normalizedExt returns the lowercased extension of a filename.
func normalizedExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

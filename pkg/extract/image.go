package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/notefern/cardindex/pkg/core"
)

// ImagePlaceholder stands in for image content when no recognizer is
// configured and the file carries no usable metadata. It keeps image
// attachments findable by kind without polluting the index with noise.
const ImagePlaceholder = "[image]"

// extractImage asks the configured recognizer for text. Without a
// recognizer, or when recognition fails, EXIF metadata is indexed instead;
// an image with neither yields the placeholder.
func (s *Service) extractImage(ctx context.Context, path string) (*core.Document, error) {
	if s.recognizer != nil {
		text, err := s.recognizer.ProcessImage(ctx, path)
		if err == nil && strings.TrimSpace(text) != "" {
			return &core.Document{Content: collapseWhitespace(text), Encoding: "utf-8"}, nil
		}
		if err != nil {
			logger.Debugf("image recognition failed for %s: %v", path, err)
		}
	}

	if text := exifText(path); text != "" {
		return &core.Document{Content: text, Encoding: "utf-8"}, nil
	}
	return &core.Document{Content: ImagePlaceholder, Encoding: "utf-8"}, nil
}

// exifText flattens the descriptive EXIF fields of an image into a single
// line. Returns "" for images without metadata.
func exifText(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	meta, err := exif.Decode(f)
	if err != nil {
		return ""
	}

	var parts []string
	for _, field := range []exif.FieldName{
		exif.ImageDescription,
		exif.Make,
		exif.Model,
		exif.Software,
		exif.DateTime,
	} {
		tag, err := meta.Get(field)
		if err != nil {
			continue
		}
		value, err := tag.StringVal()
		if err != nil {
			value = fmt.Sprint(tag)
		}
		value = strings.TrimSpace(strings.Trim(value, `"`))
		if value != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, " ")
}

package extract

import (
	"os"

	"github.com/notefern/cardindex/pkg/core"
)

// extractPlain reads a text file, detecting its encoding and converting the
// content to UTF-8. Never fails on undecodable bytes; only I/O errors
// surface.
func (s *Service) extractPlain(path string) (*core.Document, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapf(err, "read %s", path)
	}
	res := s.detector.Detect(buf)
	return &core.Document{
		Content:  res.Content,
		Encoding: res.Encoding,
	}, nil
}

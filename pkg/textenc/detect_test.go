package textenc

import (
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

const sample = "全文检索引擎 full-text search 123"

func encodeOrFatal(t *testing.T, name string, s string) []byte {
	t.Helper()
	var enc interface {
		Bytes([]byte) ([]byte, error)
	}
	switch name {
	case "gbk":
		enc = simplifiedchinese.GBK.NewEncoder()
	case "big5":
		enc = traditionalchinese.Big5.NewEncoder()
	default:
		t.Fatalf("unknown encoding %s", name)
	}
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encoding sample as %s: %v", name, err)
	}
	return out
}

func TestDetectUTF8RoundTrip(t *testing.T) {
	res := Detect([]byte(sample))
	if res.Encoding != "utf-8" {
		t.Errorf("expected utf-8, got %s", res.Encoding)
	}
	if res.Content != sample {
		t.Errorf("content changed: %q", res.Content)
	}
}

func TestDetectUTF8BOM(t *testing.T) {
	buf := append([]byte{0xEF, 0xBB, 0xBF}, []byte(sample)...)
	res := Detect(buf)
	if res.Encoding != "utf-8" {
		t.Errorf("expected utf-8, got %s", res.Encoding)
	}
	if res.Content != sample {
		t.Errorf("BOM not stripped, got %q", res.Content)
	}
}

func TestDetectGBKRoundTrip(t *testing.T) {
	// GBK sits first in the simplified-Chinese Windows candidate order.
	d := NewDetector("windows")
	buf := encodeOrFatal(t, "gbk", "计算机科学与技术专业课程安排")
	res := d.Detect(buf)
	if res.Encoding != "gbk" {
		t.Fatalf("expected gbk, got %s", res.Encoding)
	}
	if res.Content != "计算机科学与技术专业课程安排" {
		t.Errorf("content changed: %q", res.Content)
	}
}

func TestDetectBig5RoundTrip(t *testing.T) {
	// A traditional-Chinese system orders big5 ahead of the simplified
	// codecs; the candidate list is ordered by platform locale, so the test
	// builds that ordering directly.
	d := &Detector{
		candidates: []candidate{
			{"big5", traditionalchinese.Big5},
			{"gbk", simplifiedchinese.GBK},
		},
		fallback: candidate{"windows-1252", charmap.Windows1252},
	}
	const traditional = "繁體中文內容測試"
	buf := encodeOrFatal(t, "big5", traditional)
	res := d.Detect(buf)
	if res.Encoding != "big5" {
		t.Fatalf("expected big5, got %s", res.Encoding)
	}
	if res.Content != traditional {
		t.Errorf("content changed: %q", res.Content)
	}
}

func TestDetectNeverFails(t *testing.T) {
	// A byte soup that is not valid in any candidate still produces a
	// string and a best-guess label.
	buf := []byte{0xFF, 0xFF, 0x00, 0x81, 0x81, 0xFE}
	res := NewDetector("linux").Detect(buf)
	if res.Encoding == "" {
		t.Error("expected a best-guess encoding label")
	}
	if res.Content == "" {
		t.Error("expected non-empty lossy content")
	}
}

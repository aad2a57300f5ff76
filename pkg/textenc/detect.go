// Package textenc decodes raw file bytes into strings, guessing the source
// encoding. Detection is validation-based: a candidate encoding is accepted
// only if decoding and re-encoding reproduces the input byte-for-byte, which
// rejects buffers that merely happen to decode without error.
package textenc

import (
	"bytes"
	"runtime"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Result holds the decoded content and the name of the encoding that
// produced it.
type Result struct {
	Content  string
	Encoding string
}

type candidate struct {
	name string
	enc  encoding.Encoding
}

// Detector resolves byte buffers to strings using a platform-ordered
// candidate list. Construct once and pass to components that need it; the
// candidate order depends only on the target platform, never on per-call
// state.
type Detector struct {
	candidates []candidate
	fallback   candidate
}

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// NewDetector builds a detector for the given GOOS value.
func NewDetector(goos string) *Detector {
	var cands []candidate
	switch goos {
	case "windows":
		cands = []candidate{
			{"gbk", simplifiedchinese.GBK},
			{"gb18030", simplifiedchinese.GB18030},
			{"big5", traditionalchinese.Big5},
		}
	case "darwin":
		cands = []candidate{
			{"macintosh", charmap.Macintosh},
		}
	}
	cands = append(cands, candidate{"windows-1252", charmap.Windows1252})

	fallback := candidate{"windows-1252", charmap.Windows1252}
	if goos == "windows" {
		fallback = candidate{"gbk", simplifiedchinese.GBK}
	}

	return &Detector{candidates: cands, fallback: fallback}
}

// Default is the detector for the running platform.
var Default = NewDetector(runtime.GOOS)

// Detect decodes buf with the default platform detector.
func Detect(buf []byte) Result {
	return Default.Detect(buf)
}

// Detect determines the text encoding of buf and decodes it. It never
// fails: when no candidate round-trips exactly, the buffer is decoded with
// the platform default encoding as a lossy best effort.
func (d *Detector) Detect(buf []byte) Result {
	// BOM fast paths. A UTF-8 BOM is authoritative; UTF-16 BOMs are decoded
	// through the x/text UTF-16 codec.
	if bytes.HasPrefix(buf, utf8BOM) {
		return Result{Content: string(buf[len(utf8BOM):]), Encoding: "utf-8"}
	}
	if bytes.HasPrefix(buf, utf16LEBOM) || bytes.HasPrefix(buf, utf16BEBOM) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if decoded, err := dec.Bytes(buf); err == nil {
			return Result{Content: string(decoded), Encoding: "utf-16"}
		}
	}

	// Valid UTF-8 re-encodes to itself, so utf8.Valid is the round-trip
	// check for the primary path.
	if utf8.Valid(buf) {
		return Result{Content: string(buf), Encoding: "utf-8"}
	}

	for _, c := range d.candidates {
		decoded, err := c.enc.NewDecoder().Bytes(buf)
		if err != nil {
			continue
		}
		reencoded, err := c.enc.NewEncoder().Bytes(decoded)
		if err != nil {
			continue
		}
		if bytes.Equal(reencoded, buf) {
			return Result{Content: string(decoded), Encoding: c.name}
		}
	}

	// Nothing round-trips. Decode with the platform default, replacing
	// undecodable bytes; a garbled string beats a hard failure here.
	decoded, err := d.fallback.enc.NewDecoder().Bytes(buf)
	if err != nil || !utf8.Valid(decoded) {
		return Result{Content: string(bytes.ToValidUTF8(buf, []byte("�"))), Encoding: d.fallback.name}
	}
	return Result{Content: string(decoded), Encoding: d.fallback.name}
}

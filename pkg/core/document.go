package core

// DocumentKind is the declared format of an imported file. The caller
// declares the kind; extraction never sniffs magic bytes.
type DocumentKind string

const (
	KindPDF        DocumentKind = "pdf"
	KindWord       DocumentKind = "word"
	KindPowerPoint DocumentKind = "powerpoint"
	KindExcel      DocumentKind = "excel"
	KindImage      DocumentKind = "image"
	KindText       DocumentKind = "text"
)

// Page is one page of an extracted document. Pages are transient: they are
// used to attribute search hits to a location in the source file and are not
// persisted individually.
type Page struct {
	PageNumber int
	Content    string
	PageType   string
}

// Document is the result of extracting a file. Content always holds the
// full flattened text; Pages is populated for formats with a pagination
// scheme (native for PDF, synthetic for word/powerpoint).
type Document struct {
	Content    string
	Encoding   string
	Pages      []Page
	TotalPages int
}

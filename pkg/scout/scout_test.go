package scout

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/notefern/cardindex/pkg/core"
	"github.com/notefern/cardindex/pkg/extract"
	"github.com/notefern/cardindex/pkg/index"
	"github.com/notefern/cardindex/pkg/storage"
)

func testScanner(t *testing.T, root string, opts ScannerOptions) (*Scanner, *storage.Store, *index.Outbox) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "cards.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	outbox := index.NewOutbox(index.NewWriter(store), 64)
	t.Cleanup(outbox.Close)

	opts.Roots = []string{root}
	return NewScanner(store, extract.NewService(), outbox, opts), store, outbox
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkIndexesDocuments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "笔记.md"), "周末旅行计划整理")
	writeFile(t, filepath.Join(root, "binary.exe"), "\x00\x01")
	writeFile(t, filepath.Join(root, ".hidden.txt"), "secret")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "readme.md"), "dependency docs")
	writeFile(t, filepath.Join(root, "sub", "深度", "readme.txt"), "嵌套目录中的文档")

	scanner, store, _ := testScanner(t, root, ScannerOptions{})
	stats, err := scanner.Walk(context.Background())
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if stats.Indexed != 2 {
		t.Errorf("expected 2 indexed files, got %+v", stats)
	}

	hits, err := store.Search(storage.Query{
		Match: `"旅行"`, HighlightStart: "<mark>", HighlightEnd: "</mark>",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("markdown content should be searchable, got %d hits", len(hits))
	}
	if hits[0].CardType != core.TypeAttachment {
		t.Errorf("discovered file should be an attachment card: %q", hits[0].CardType)
	}
	if hits[0].Name != "笔记.md" {
		t.Errorf("card name should be the file base name: %q", hits[0].Name)
	}
}

func TestWalkSkipsUnchangedFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "doc.txt")
	writeFile(t, path, "稳定不变的内容")

	scanner, store, _ := testScanner(t, root, ScannerOptions{})
	if _, err := scanner.Walk(context.Background()); err != nil {
		t.Fatal(err)
	}

	second, err := scanner.Walk(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if second.Indexed != 0 {
		t.Errorf("unchanged file re-indexed: %+v", second)
	}

	// Touch the file with new content and a newer mtime.
	writeFile(t, path, "更新之后的内容变长了")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	third, err := scanner.Walk(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if third.Indexed != 1 {
		t.Errorf("changed file not re-indexed: %+v", third)
	}

	count, err := store.CardCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("re-index should reuse the card, got %d cards", count)
	}
}

func TestWalkHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(root, "dir", "f"+string(rune('a'+i))+".txt"), "content")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner, _, _ := testScanner(t, root, ScannerOptions{})
	if _, err := scanner.Walk(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestForgetRemovesCard(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gone.txt")
	writeFile(t, path, "即将删除的文件内容")

	scanner, store, outbox := testScanner(t, root, ScannerOptions{})
	if _, err := scanner.Walk(context.Background()); err != nil {
		t.Fatal(err)
	}

	scanner.Forget(path)
	outbox.Flush()

	count, err := store.CardCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("forgotten file should drop its card, got %d", count)
	}
	if _, ok, _ := store.LookupIndexedFile(path); ok {
		t.Error("fingerprint should be gone")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		kind core.DocumentKind
		ok   bool
	}{
		{"report.PDF", core.KindPDF, true},
		{"slides.pptx", core.KindPowerPoint, true},
		{"notes.md", core.KindText, true},
		{"photo.JPG", core.KindImage, true},
		{"budget.xlsx", core.KindExcel, true},
		{"program.exe", "", false},
		{"archive.zip", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		kind, ok := Classify(tt.path)
		if ok != tt.ok || (ok && kind != tt.kind) {
			t.Errorf("Classify(%q) = %v %v, want %v %v", tt.path, kind, ok, tt.kind, tt.ok)
		}
	}
}

func TestExcluder(t *testing.T) {
	e := NewExcluder([]string{"*.bak"})

	for _, dir := range []string{"/home/u/project/.git", "/home/u/project/node_modules", "/home/u/.config"} {
		if !e.SkipDir(dir) {
			t.Errorf("should skip directory %s", dir)
		}
	}
	if e.SkipDir("/home/u/Documents") {
		t.Error("plain directory should not be skipped")
	}

	if !e.SkipFile("/home/u/notes/.DS_Store") {
		t.Error("hidden file should be skipped")
	}
	if !e.SkipFile("/home/u/docs/~$draft.docx") {
		t.Error("office lock file should be skipped")
	}
	if !e.SkipFile("/home/u/old.bak") {
		t.Error("user pattern should be honored")
	}
	if e.SkipFile("/home/u/notes/plan.txt") {
		t.Error("plain file should not be skipped")
	}
}

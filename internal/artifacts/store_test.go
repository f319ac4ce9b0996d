package artifacts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_CreatesFixedSubdirectories(t *testing.T) {
	dir := t.TempDir()
	if _, err := New(dir); err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, sub := range Categories() {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("subdirectory %q not created", sub)
		}
	}
}

func TestStore_SaveGetDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	content := "hello artifact"
	info, err := store.Save("documents", "note.txt", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", info.Size, len(content))
	}

	gotInfo, reader, err := store.Get("documents", "note.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer reader.Close()
	if gotInfo.Filename != "note.txt" {
		t.Errorf("Filename = %q, want %q", gotInfo.Filename, "note.txt")
	}
	buf := make([]byte, 1024)
	n, _ := reader.Read(buf)
	if string(buf[:n]) != content {
		t.Errorf("content = %q, want %q", string(buf[:n]), content)
	}

	if err := store.Delete("documents", "note.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := store.Get("documents", "note.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete: got %v, want ErrNotFound", err)
	}
}

func TestStore_Save_RejectsUnknownCategory(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)
	if _, err := store.Save("videos", "x.mp4", strings.NewReader("x")); err == nil {
		t.Fatal("Save with unknown category should fail")
	}
}

func TestStore_Resolve_SearchesFixedOrder(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Place the same bare filename under both "documents" and "temp"; images
	// precedes documents, which precedes temp, in Categories() order.
	if _, err := store.Save("temp", "report.pdf", strings.NewReader("temp copy")); err != nil {
		t.Fatalf("Save temp: %v", err)
	}
	path, err := store.Resolve("report.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != "temp" {
		t.Errorf("Resolve found %q, want it under temp/", path)
	}

	if _, err := store.Save("documents", "report.pdf", strings.NewReader("real copy")); err != nil {
		t.Fatalf("Save documents: %v", err)
	}
	path, err = store.Resolve("report.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != "documents" {
		t.Errorf("Resolve found %q, want documents/ (earlier in fixed search order)", path)
	}
}

func TestStore_Resolve_NotFound(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)
	if _, err := store.Resolve("missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve: got %v, want ErrNotFound", err)
	}
}

func TestStore_List_FiltersByCategory(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)
	store.Save("images", "a.png", strings.NewReader("a"))
	store.Save("audio", "b.wav", strings.NewReader("b"))

	all := store.List("")
	if len(all) != 2 {
		t.Fatalf("List(\"\") = %d entries, want 2", len(all))
	}
	images := store.List("images")
	if len(images) != 1 || images[0].Filename != "a.png" {
		t.Errorf("List(\"images\") = %+v, want one entry a.png", images)
	}
}

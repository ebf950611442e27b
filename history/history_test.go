package history

import (
	"context"
	"testing"
	"time"
)

func TestRecordAndCount(t *testing.T) {
	db := OpenMemory(t)
	log := New(db)
	ctx := context.Background()

	log.Record(ctx, Entry{
		Filename:     "notes.txt",
		InputFormat:  "txt",
		OutputFormat: "pdf",
		InputBytes:   12,
		OutputBytes:  900,
		Success:      true,
		Duration:     42 * time.Millisecond,
	})
	log.Record(ctx, Entry{
		Filename:     "bad.docx",
		InputFormat:  "docx",
		OutputFormat: "png",
		Success:      false,
		Error:        "unsupported conversion: docx to png",
	})

	n, err := log.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestRecordIDsAreUnique(t *testing.T) {
	db := OpenMemory(t)
	log := New(db)
	ctx := context.Background()

	// PRIMARY KEY would reject duplicates; both rows landing proves
	// distinct IDs.
	for i := 0; i < 10; i++ {
		log.Record(ctx, Entry{Filename: "f.txt", InputFormat: "txt", OutputFormat: "pdf", Success: true})
	}
	n, err := log.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Errorf("count = %d, want 10", n)
	}
}

func TestCleanup(t *testing.T) {
	db := OpenMemory(t)
	log := New(db)
	ctx := context.Background()

	log.Record(ctx, Entry{Filename: "old.txt", InputFormat: "txt", OutputFormat: "pdf", Success: true})

	// Backdate the row past the retention window.
	if _, err := db.Exec(`UPDATE conversion_logs SET created_at = created_at - 40*86400`); err != nil {
		t.Fatal(err)
	}
	if err := Cleanup(ctx, db, 30); err != nil {
		t.Fatal(err)
	}
	n, err := log.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("count after cleanup = %d, want 0", n)
	}

	// Zero days disables cleanup.
	log.Record(ctx, Entry{Filename: "keep.txt", InputFormat: "txt", OutputFormat: "pdf", Success: true})
	if err := Cleanup(ctx, db, 0); err != nil {
		t.Fatal(err)
	}
	if n, _ := log.Count(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

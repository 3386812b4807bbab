package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTraceWriteRead(t *testing.T) {
	baseDir := t.TempDir()
	runID := "trace-run-1"

	writer, err := NewTraceWriter(baseDir, runID, false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}

	entries := []TraceEntry{
		{Evaluation: 1, DeckID: 1, Value: -120.5, Timestamp: time.Now()},
		{Evaluation: 2, DeckID: 2, Value: -180.25, Timestamp: time.Now(), Vector: []float64{0.5, -1.0}},
		{Evaluation: 3, DeckID: 3, Value: -240.0, Timestamp: time.Now()},
	}
	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader, err := NewTraceReader(baseDir, runID)
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer reader.Close()

	got, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("read %d entries, want %d", len(got), len(entries))
	}

	for i, entry := range entries {
		if got[i].Evaluation != entry.Evaluation {
			t.Errorf("entry %d Evaluation = %d, want %d", i, got[i].Evaluation, entry.Evaluation)
		}
		if got[i].Value != entry.Value {
			t.Errorf("entry %d Value = %v, want %v", i, got[i].Value, entry.Value)
		}
		if got[i].DeckID != entry.DeckID {
			t.Errorf("entry %d DeckID = %d, want %d", i, got[i].DeckID, entry.DeckID)
		}
	}

	if len(got[1].Vector) != 2 || got[1].Vector[0] != 0.5 {
		t.Errorf("entry 1 Vector = %v, want [0.5 -1]", got[1].Vector)
	}
	if got[0].Vector != nil {
		t.Errorf("entry 0 Vector = %v, want nil (omitted)", got[0].Vector)
	}
}

func TestTraceAppend(t *testing.T) {
	baseDir := t.TempDir()
	runID := "trace-run-2"

	writer, err := NewTraceWriter(baseDir, runID, false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	writer.Write(TraceEntry{Evaluation: 1, Value: 1.0, Timestamp: time.Now()})
	writer.Close()

	// Reopen in append mode and add a second entry.
	writer, err = NewTraceWriter(baseDir, runID, true)
	if err != nil {
		t.Fatalf("NewTraceWriter append failed: %v", err)
	}
	writer.Write(TraceEntry{Evaluation: 2, Value: 2.0, Timestamp: time.Now()})
	writer.Close()

	reader, err := NewTraceReader(baseDir, runID)
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer reader.Close()

	got, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d entries after append, want 2", len(got))
	}
}

func TestTraceTruncate(t *testing.T) {
	baseDir := t.TempDir()
	runID := "trace-run-3"

	writer, _ := NewTraceWriter(baseDir, runID, false)
	writer.Write(TraceEntry{Evaluation: 1, Value: 1.0, Timestamp: time.Now()})
	writer.Close()

	// Reopen without append: the old entries are discarded.
	writer, _ = NewTraceWriter(baseDir, runID, false)
	writer.Write(TraceEntry{Evaluation: 10, Value: 10.0, Timestamp: time.Now()})
	writer.Close()

	reader, _ := NewTraceReader(baseDir, runID)
	defer reader.Close()

	got, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 1 || got[0].Evaluation != 10 {
		t.Errorf("entries after truncate = %+v, want single entry 10", got)
	}
}

func TestTraceReaderNotFound(t *testing.T) {
	_, err := NewTraceReader(t.TempDir(), "missing-run")
	if err == nil {
		t.Fatal("NewTraceReader succeeded for missing trace")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error %v is not ErrNotFound", err)
	}
}

func TestTraceReadSequential(t *testing.T) {
	baseDir := t.TempDir()
	runID := "trace-run-4"

	writer, _ := NewTraceWriter(baseDir, runID, false)
	writer.Write(TraceEntry{Evaluation: 1, Value: 1.0, Timestamp: time.Now()})
	writer.Write(TraceEntry{Evaluation: 2, Value: 2.0, Timestamp: time.Now()})
	writer.Close()

	reader, _ := NewTraceReader(baseDir, runID)
	defer reader.Close()

	first, err := reader.Read()
	if err != nil {
		t.Fatalf("first Read failed: %v", err)
	}
	if first.Evaluation != 1 {
		t.Errorf("first entry = %d, want 1", first.Evaluation)
	}

	if _, err := reader.Read(); err != nil {
		t.Fatalf("second Read failed: %v", err)
	}

	if _, err := reader.Read(); err != io.EOF {
		t.Errorf("Read past end = %v, want io.EOF", err)
	}
}

func TestDeleteTrace(t *testing.T) {
	baseDir := t.TempDir()
	runID := "trace-run-5"

	writer, _ := NewTraceWriter(baseDir, runID, false)
	writer.Write(TraceEntry{Evaluation: 1, Value: 1.0, Timestamp: time.Now()})
	writer.Close()

	if err := DeleteTrace(baseDir, runID); err != nil {
		t.Fatalf("DeleteTrace failed: %v", err)
	}

	path := filepath.Join(baseDir, "runs", runID, "trace.jsonl")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("trace file still exists after delete")
	}

	// Deleting a missing trace is not an error.
	if err := DeleteTrace(baseDir, "never-existed"); err != nil {
		t.Errorf("DeleteTrace on missing file = %v, want nil", err)
	}
}

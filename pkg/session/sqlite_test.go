package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sanjai-Magilan/insurance-assistant/pkg/claim"
)

func newTestSQLiteSnapshots(t *testing.T) (*SQLiteSnapshots, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sessions.db")
	snaps, err := NewSQLiteSnapshots(path)
	if err != nil {
		t.Fatalf("failed to open snapshots: %v", err)
	}
	t.Cleanup(func() { snaps.Close() })
	return snaps, path
}

func TestSQLiteSnapshots_SaveAndLoad(t *testing.T) {
	snaps, _ := newTestSQLiteSnapshots(t)
	ctx := context.Background()

	s := New("abc", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.Stage = StageClarification
	s.PlanID = "gold"
	s.Facts.MedicalCondition = claim.Ptr("cataract")

	if err := snaps.Save(ctx, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := snaps.Load(ctx, "abc")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected session, got nil")
	}
	if loaded.Stage != StageClarification || loaded.PlanID != "gold" {
		t.Errorf("unexpected session: stage=%s plan=%s", loaded.Stage, loaded.PlanID)
	}
	if loaded.Facts.Condition() != "cataract" {
		t.Errorf("expected condition cataract, got %q", loaded.Facts.Condition())
	}
}

func TestSQLiteSnapshots_LoadMissing(t *testing.T) {
	snaps, _ := newTestSQLiteSnapshots(t)

	loaded, err := snaps.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil, got %+v", loaded)
	}
}

func TestSQLiteSnapshots_Upsert(t *testing.T) {
	snaps, _ := newTestSQLiteSnapshots(t)
	ctx := context.Background()

	s := New("abc", time.Now())
	snaps.Save(ctx, s)
	s.Stage = StageFollowUp
	s.Version = 3
	if err := snaps.Save(ctx, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	all, err := snaps.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(all))
	}
	if all[0].Stage != StageFollowUp || all[0].Version != 3 {
		t.Errorf("expected updated snapshot, got stage=%s version=%d", all[0].Stage, all[0].Version)
	}
}

func TestSQLiteSnapshots_OlderVersionDoesNotOverwrite(t *testing.T) {
	snaps, _ := newTestSQLiteSnapshots(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	newer := New("abc", now)
	newer.Stage = StageFinalAnalysis
	newer.Version = 2
	older := New("abc", now)
	older.Stage = StageDataGathering
	older.Version = 1

	if err := snaps.Save(ctx, newer); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := snaps.Save(ctx, older); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := snaps.Load(ctx, "abc")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected snapshot, got nil")
	}
	if loaded.Version != 2 || loaded.Stage != StageFinalAnalysis {
		t.Errorf("expected version 2 at %s, got version %d at %s", StageFinalAnalysis, loaded.Version, loaded.Stage)
	}
}

func TestSQLiteSnapshots_DeleteAndCleanup(t *testing.T) {
	snaps, _ := newTestSQLiteSnapshots(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	snaps.Save(ctx, New("a", now))
	snaps.Save(ctx, New("b", now.Add(-2*time.Hour)))
	snaps.Save(ctx, New("c", now.Add(-3*time.Hour)))

	if err := snaps.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	deleted, err := snaps.Cleanup(ctx, now.Add(-150*time.Minute))
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 cleaned up, got %d", deleted)
	}

	all, _ := snaps.LoadAll(ctx)
	if len(all) != 1 || all[0].ID != "b" {
		t.Errorf("expected only b left, got %d snapshots", len(all))
	}
}

func TestSQLiteSnapshots_Validation(t *testing.T) {
	snaps, _ := newTestSQLiteSnapshots(t)
	ctx := context.Background()

	if err := snaps.Save(ctx, &Session{}); err == nil {
		t.Error("expected error saving session without id")
	}
	if _, err := snaps.Load(ctx, ""); err == nil {
		t.Error("expected error loading empty id")
	}
	if err := snaps.Delete(ctx, ""); err == nil {
		t.Error("expected error deleting empty id")
	}
	if _, err := NewSQLiteSnapshots(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestSQLiteSnapshots_CloseIdempotent(t *testing.T) {
	snaps, _ := newTestSQLiteSnapshots(t)
	if err := snaps.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := snaps.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestSQLiteSnapshots_SurviveRestart(t *testing.T) {
	clock := newTestClock()
	path := filepath.Join(t.TempDir(), "sessions.db")

	first, err := NewSQLiteSnapshots(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	store := NewMemoryStore(WithStoreClock(clock.Now), WithSnapshots(first))
	store.Update("abc", func(s *Session) error {
		s.Stage = StageDataGathering
		s.Facts.PatientAge = claim.Ptr(45)
		return nil
	})
	if err := first.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	second, err := NewSQLiteSnapshots(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	restored := NewMemoryStore(WithStoreClock(clock.Now), WithSnapshots(second))
	n, err := restored.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 restored session, got %d", n)
	}

	got, err := restored.Get("abc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Stage != StageDataGathering || got.Facts.PatientAge == nil || *got.Facts.PatientAge != 45 {
		t.Errorf("unexpected restored session: stage=%s age=%v", got.Stage, got.Facts.PatientAge)
	}
	if got.Version != 1 {
		t.Errorf("expected version 1, got %d", got.Version)
	}
}

func TestSQLiteSnapshots_Ping(t *testing.T) {
	snaps, _ := newTestSQLiteSnapshots(t)
	if err := snaps.Ping(context.Background()); err != nil {
		t.Errorf("expected ping to succeed, got %v", err)
	}

	snaps.Close()
	if err := snaps.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail after close")
	}
}

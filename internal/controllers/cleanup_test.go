package controllers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mbonnet/cinelist/internal/models"
)

func TestSweepOrphanedImages(t *testing.T) {
	db := testDatabase(t)
	dir := t.TempDir()

	referenced := filepath.Join(dir, "Inception_0.jpg")
	orphaned := filepath.Join(dir, "Deleted_Movie_0.jpg")
	for _, path := range []string{referenced, orphaned} {
		if err := os.WriteFile(path, []byte("img"), 0644); err != nil {
			t.Fatalf("Failed to write test image: %v", err)
		}
	}

	movie := &models.Movie{Title: "Inception", Year: "2010", ImagePaths: []string{referenced}}
	if err := db.CreateMovie(movie); err != nil {
		t.Fatalf("Failed to seed movie: %v", err)
	}

	ctrl := NewCleanupController(db, dir, testLogger())
	if err := ctrl.SweepOrphanedImages(); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if _, err := os.Stat(referenced); err != nil {
		t.Error("Referenced image should survive the sweep")
	}
	if _, err := os.Stat(orphaned); !os.IsNotExist(err) {
		t.Error("Orphaned image should be removed")
	}
}

func TestSweepMissingDirectory(t *testing.T) {
	db := testDatabase(t)
	ctrl := NewCleanupController(db, filepath.Join(t.TempDir(), "missing"), testLogger())

	if err := ctrl.SweepOrphanedImages(); err != nil {
		t.Errorf("Missing directory should not be an error: %v", err)
	}
}

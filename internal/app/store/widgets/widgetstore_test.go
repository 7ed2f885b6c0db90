package widgetstore_test

import (
	"errors"
	"testing"

	widgetstore "github.com/dalemusser/stratametrics/internal/app/store/widgets"
	"github.com/dalemusser/stratametrics/internal/domain/models"
	"github.com/dalemusser/stratametrics/internal/testutil"
)

func TestGetByKey_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := widgetstore.New(db).GetByKey(ctx, "missing")
	if !errors.Is(err, widgetstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSave_CreatesThenUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := widgetstore.New(db)
	w := models.Widget{
		Key:              "weekly",
		Title:            "Last Week",
		MetricCategories: "a|b",
		LiquidTemplate:   "{{ Metrics | size }}",
	}
	if err := store.Save(ctx, w); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	created, err := store.GetByKey(ctx, "weekly")
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if created.Title != "Last Week" || created.ID.IsZero() || created.CreatedAt.IsZero() {
		t.Errorf("unexpected widget after create: %+v", created)
	}

	w.Title = "Renamed"
	w.RoundValues = true
	if err := store.Save(ctx, w); err != nil {
		t.Fatalf("Save (update) failed: %v", err)
	}

	updated, err := store.GetByKey(ctx, "weekly")
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Error("update should keep the document id")
	}
	if updated.Title != "Renamed" || !updated.RoundValues {
		t.Errorf("fields not updated: %+v", updated)
	}
	if updated.UpdatedAt == nil {
		t.Error("expected updated_at to be set")
	}
}

func TestEnsureDefault_DoesNotOverwrite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := widgetstore.New(db)

	created, err := store.EnsureDefault(ctx, models.Widget{Key: "home", Title: "Default"})
	if err != nil {
		t.Fatalf("EnsureDefault failed: %v", err)
	}
	if !created {
		t.Error("expected first EnsureDefault to create the widget")
	}

	created, err = store.EnsureDefault(ctx, models.Widget{Key: "home", Title: "Other"})
	if err != nil {
		t.Fatalf("EnsureDefault failed: %v", err)
	}
	if created {
		t.Error("expected second EnsureDefault to be a no-op")
	}

	got, err := store.GetByKey(ctx, "home")
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if got.Title != "Default" {
		t.Errorf("title: got %q, want %q", got.Title, "Default")
	}
}

package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/stratametrics/internal/app/features/health"
	"github.com/dalemusser/stratametrics/internal/app/system/timeouts"
	"github.com/dalemusser/stratametrics/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Widgets  *int64 `json:"widgets"`
	Message  string `json:"message"`
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures.CreateWidget(ctx, "weekly")

	handler := health.NewHandler(db, zap.NewNop())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}

	var got response
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.Status != "ok" || got.Database != "connected" {
		t.Errorf("got %+v", got)
	}
	if got.Widgets == nil || *got.Widgets != 1 {
		t.Errorf("widgets: got %v, want 1", got.Widgets)
	}
}

func TestServe_DatabaseUnavailable(t *testing.T) {
	timeouts.Configure(timeouts.Config{Ping: 200 * time.Millisecond})
	t.Cleanup(timeouts.Reset)

	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	handler := health.NewHandler(client.Database("unreachable"), zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	var got response
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.Status != "error" || got.Database != "disconnected" || got.Message == "" {
		t.Errorf("got %+v", got)
	}
}

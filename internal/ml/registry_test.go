package ml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/pitwall/strategy-api/internal/models"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(t.TempDir(), zap.NewNop().Sugar())
}

func tireFit(t *testing.T) func(context.Context) (Artifact, error) {
	t.Helper()
	return func(context.Context) (Artifact, error) {
		ds, err := Blend(nil, SyntheticTire(200, nil, 42), 0.7, 0.3)
		if err != nil {
			return nil, err
		}
		return TrainTire(ds)
	}
}

func TestRegistryInitialState(t *testing.T) {
	r := testRegistry(t)
	for _, e := range r.Status() {
		if e.Status != StatusNotLoaded {
			t.Errorf("model %s initial status = %s, want %s", e.Model, e.Status, StatusNotLoaded)
		}
	}
	if _, err := r.Artifact(DomainTire); err == nil {
		t.Fatal("expected NotReadyError before training")
	} else {
		var nr *NotReadyError
		if !errors.As(err, &nr) {
			t.Fatalf("error = %v, want NotReadyError", err)
		}
	}
}

func TestRegistryUnknownModel(t *testing.T) {
	r := testRegistry(t)
	if _, err := r.Artifact("nope"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("Artifact error = %v, want ErrUnknownModel", err)
	}
	if _, err := r.Train(context.Background(), "nope", tireFit(t)); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("Train error = %v, want ErrUnknownModel", err)
	}
}

func TestRegistryTrainAndServe(t *testing.T) {
	r := testRegistry(t)
	if _, err := r.Train(context.Background(), DomainTire, tireFit(t)); err != nil {
		t.Fatalf("Train: %v", err)
	}

	art, err := r.Artifact(DomainTire)
	if err != nil {
		t.Fatalf("Artifact: %v", err)
	}
	m, ok := art.(*TireModel)
	if !ok {
		t.Fatalf("artifact type = %T", art)
	}
	req := models.DefaultTireStrategyRequest()
	if _, err := m.Predict(&req); err != nil {
		t.Fatalf("Predict on served artifact: %v", err)
	}

	for _, e := range r.Status() {
		if e.Model == DomainTire {
			if e.Status != StatusTrained {
				t.Errorf("status = %s, want %s", e.Status, StatusTrained)
			}
			if e.TrainedAt == nil {
				t.Error("trained model has no TrainedAt")
			}
		}
	}
}

func TestRegistryPersistsArtifact(t *testing.T) {
	dir := t.TempDir()
	logger := zap.NewNop().Sugar()
	r := NewRegistry(dir, logger)
	if _, err := r.Train(context.Background(), DomainTire, tireFit(t)); err != nil {
		t.Fatalf("Train: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "tire_strategy_model.json")); err != nil {
		t.Fatalf("artifact file missing: %v", err)
	}

	// A fresh registry over the same dir restores the artifact.
	restored := NewRegistry(dir, logger)
	restored.LoadAll()
	art, err := restored.Artifact(DomainTire)
	if err != nil {
		t.Fatalf("Artifact after LoadAll: %v", err)
	}
	req := models.DefaultTireStrategyRequest()
	if _, err := art.(*TireModel).Predict(&req); err != nil {
		t.Fatalf("Predict on restored artifact: %v", err)
	}
	for _, e := range restored.Status() {
		if e.Model == DomainTire && e.Status != StatusLoaded {
			t.Errorf("restored status = %s, want %s", e.Status, StatusLoaded)
		}
	}
}

func TestRegistryFailedFitKeepsPreviousArtifact(t *testing.T) {
	r := testRegistry(t)
	if _, err := r.Train(context.Background(), DomainTire, tireFit(t)); err != nil {
		t.Fatalf("initial Train: %v", err)
	}
	before, err := r.Artifact(DomainTire)
	if err != nil {
		t.Fatalf("Artifact: %v", err)
	}

	_, err = r.Train(context.Background(), DomainTire, func(context.Context) (Artifact, error) {
		return nil, fmt.Errorf("fit blew up")
	})
	var trainErr *TrainingError
	if !errors.As(err, &trainErr) {
		t.Fatalf("error = %v, want TrainingError", err)
	}

	after, err := r.Artifact(DomainTire)
	if err != nil {
		t.Fatalf("previous artifact no longer servable: %v", err)
	}
	if before != after {
		t.Error("failed fit replaced the servable artifact")
	}
	for _, e := range r.Status() {
		if e.Model == DomainTire {
			if e.Status == StatusError {
				t.Error("status dropped to error despite a servable artifact")
			}
			if e.Error == "" {
				t.Error("last error not recorded")
			}
		}
	}
}

func TestRegistryFailedFirstFitIsError(t *testing.T) {
	r := testRegistry(t)
	_, err := r.Train(context.Background(), DomainTire, func(context.Context) (Artifact, error) {
		return nil, fmt.Errorf("no data")
	})
	if err == nil {
		t.Fatal("expected training error")
	}
	for _, e := range r.Status() {
		if e.Model == DomainTire && e.Status != StatusError {
			t.Errorf("status = %s, want %s", e.Status, StatusError)
		}
	}
	if _, err := r.Artifact(DomainTire); err == nil {
		t.Fatal("no artifact should be servable after a failed first fit")
	}
}

func TestSaveJSONAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")
	if err := saveJSON(path, map[string]int{"v": 1}); err != nil {
		t.Fatalf("saveJSON: %v", err)
	}
	if err := saveJSON(path, map[string]int{"v": 2}); err != nil {
		t.Fatalf("saveJSON overwrite: %v", err)
	}
	var out map[string]int
	if err := loadJSON(path, &out); err != nil {
		t.Fatalf("loadJSON: %v", err)
	}
	if out["v"] != 2 {
		t.Errorf("v = %d, want 2", out["v"])
	}
	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

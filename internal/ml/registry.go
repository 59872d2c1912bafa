package ml

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Model lifecycle statuses as reported by the registry.
const (
	StatusNotLoaded = "not_loaded"
	StatusTraining  = "training"
	StatusTrained   = "trained"
	StatusLoaded    = "loaded"
	StatusError     = "error"
)

// Artifact is a trained, servable model for one domain.
type Artifact interface {
	ArtifactMeta() *ArtifactMeta
}

type entry struct {
	trainMu  sync.Mutex // serializes training per domain
	status   string
	artifact Artifact
	lastErr  string
}

// Registry owns the four domain models: their lifecycle status, the servable
// artifact pointer, and the on-disk persistence. Reads never block on
// training; a finished fit swaps the artifact pointer under the short state
// lock only after the new artifact is persisted.
type Registry struct {
	dir    string
	logger *zap.SugaredLogger

	mu      sync.RWMutex // guards entry status + artifact pointers
	entries map[string]*entry
}

func NewRegistry(dir string, logger *zap.SugaredLogger) *Registry {
	entries := make(map[string]*entry, len(Domains))
	for _, d := range Domains {
		entries[d] = &entry{status: StatusNotLoaded}
	}
	return &Registry{dir: dir, logger: logger, entries: entries}
}

// LoadAll restores every persisted artifact from disk. A missing file leaves
// the model not_loaded; a corrupt file is logged and skipped the same way, so
// one bad artifact never takes the whole service down.
func (r *Registry) LoadAll() {
	for _, domain := range Domains {
		art, err := loadArtifact(r.dir, domain)
		if err != nil {
			if !os.IsNotExist(err) {
				r.logger.Warnw("skipping unreadable model artifact", "model", domain, "error", err)
			}
			continue
		}
		r.mu.Lock()
		e := r.entries[domain]
		e.artifact = art
		e.status = StatusLoaded
		r.mu.Unlock()
		r.logger.Infow("model artifact loaded", "model", domain, "trained_at", art.ArtifactMeta().TrainedAt)
	}
}

func loadArtifact(dir, domain string) (Artifact, error) {
	path := artifactPath(dir, domain)
	switch domain {
	case DomainTire:
		m := new(TireModel)
		if err := loadJSON(path, m); err != nil {
			return nil, err
		}
		return m, nil
	case DomainPitStop:
		m := new(PitStopModel)
		if err := loadJSON(path, m); err != nil {
			return nil, err
		}
		return m, nil
	case DomainRacePace:
		m := new(RacePaceModel)
		if err := loadJSON(path, m); err != nil {
			return nil, err
		}
		return m, nil
	case DomainPosition:
		m := new(PositionModel)
		if err := loadJSON(path, m); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, ErrUnknownModel
}

// Artifact returns the servable artifact for a domain. An unknown domain is
// ErrUnknownModel; a known domain without a trained artifact is NotReadyError
// regardless of whether a fit is currently running.
func (r *Registry) Artifact(model string) (Artifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[model]
	if !ok {
		return nil, ErrUnknownModel
	}
	if e.artifact == nil {
		return nil, &NotReadyError{Model: model}
	}
	return e.artifact, nil
}

// Status reports every model's lifecycle state in canonical domain order.
func (r *Registry) Status() []StatusEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StatusEntry, 0, len(Domains))
	for _, d := range Domains {
		e := r.entries[d]
		se := StatusEntry{Model: d, Status: e.status, Error: e.lastErr}
		if e.artifact != nil {
			meta := e.artifact.ArtifactMeta()
			se.TrainedAt = &meta.TrainedAt
			se.Metrics = &meta.Metrics
			se.Schema = meta.Schema
		}
		out = append(out, se)
	}
	return out
}

// StatusEntry is one model's registry state snapshot.
type StatusEntry struct {
	Model     string
	Status    string
	Error     string
	TrainedAt *time.Time
	Metrics   *Metrics
	Schema    []string
}

// Train runs fit under the domain's training mutex. Concurrent Train calls
// for the same domain queue; calls for different domains proceed in parallel.
// The sequence on success is persist, then swap, then status=trained: a
// prediction served at any instant sees either the old complete artifact or
// the new complete artifact. On failure the previous artifact, if any, stays
// servable and its status reverts.
func (r *Registry) Train(ctx context.Context, model string, fit func(ctx context.Context) (Artifact, error)) (Artifact, error) {
	r.mu.RLock()
	e, ok := r.entries[model]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownModel
	}

	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	r.mu.Lock()
	prevStatus := e.status
	e.status = StatusTraining
	r.mu.Unlock()

	fail := func(err error) (Artifact, error) {
		r.mu.Lock()
		if e.artifact != nil {
			e.status = prevStatus
			if prevStatus == StatusTraining || prevStatus == StatusError {
				e.status = StatusLoaded
			}
		} else {
			e.status = StatusError
		}
		e.lastErr = err.Error()
		r.mu.Unlock()
		r.logger.Errorw("training failed", "model", model, "error", err)
		return nil, &TrainingError{Model: model, Err: err}
	}

	start := time.Now()
	art, err := fit(ctx)
	if err != nil {
		return fail(err)
	}
	if err := saveJSON(artifactPath(r.dir, model), art); err != nil {
		return fail(err)
	}

	r.mu.Lock()
	e.artifact = art
	e.status = StatusTrained
	e.lastErr = ""
	r.mu.Unlock()

	r.logger.Infow("model trained",
		"model", model,
		"duration", time.Since(start),
		"samples", art.ArtifactMeta().Metrics.SamplesUsed,
	)
	return art, nil
}

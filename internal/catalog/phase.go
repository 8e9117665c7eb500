package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripod.studio/internal/ids"
)

// PhaseService manages phases, their project attachments, and the
// dependency links between them.
type PhaseService struct {
	store    PhaseStore
	projects ProjectStore
	now      func() time.Time
}

// NewPhaseService builds a PhaseService. The project store is consulted
// when attaching phases to projects.
func NewPhaseService(store PhaseStore, projects ProjectStore) *PhaseService {
	return &PhaseService{
		store:    store,
		projects: projects,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PhaseUpdate carries the optional fields of a phase update. Nil fields
// are left untouched.
type PhaseUpdate struct {
	Name        *string
	Description *string
	Status      *string
}

// CreatePhase persists a new phase with status "pending".
func (s *PhaseService) CreatePhase(ctx context.Context, name, description string) (*Phase, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	now := s.now()
	phase := &Phase{
		ID:          ids.New(),
		Name:        name,
		Description: description,
		Status:      "pending",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, phase); err != nil {
		return nil, err
	}
	return phase, nil
}

// Phase returns the phase with the given id.
func (s *PhaseService) Phase(ctx context.Context, id string) (*Phase, error) {
	phase, err := s.store.Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: phase not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return phase, nil
}

// UpdatePhase patches a phase. Nil fields keep their current value.
func (s *PhaseService) UpdatePhase(ctx context.Context, id string, update PhaseUpdate) (*Phase, error) {
	phase, err := s.Phase(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		phase.Name = name
	}
	if update.Description != nil {
		phase.Description = *update.Description
	}
	if update.Status != nil {
		phase.Status = *update.Status
	}
	phase.UpdatedAt = s.now()
	if err := s.store.Update(ctx, phase); err != nil {
		return nil, err
	}
	return phase, nil
}

// DeletePhase removes a phase. Attachment and dependency rows cascade
// in the store.
func (s *PhaseService) DeletePhase(ctx context.Context, id string) error {
	if _, err := s.Phase(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// ListPhases returns phases ordered by name, scoped to one project when
// projectID is non-empty.
func (s *PhaseService) ListPhases(ctx context.Context, projectID string) ([]Phase, error) {
	return s.store.List(ctx, projectID)
}

// AttachToProject links a phase to a project. Attaching twice is a
// conflict.
func (s *PhaseService) AttachToProject(ctx context.Context, projectID, phaseID string) (*ProjectPhase, error) {
	if _, err := s.projects.Find(ctx, projectID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: project not found", ErrNotFound)
		}
		return nil, err
	}
	if _, err := s.Phase(ctx, phaseID); err != nil {
		return nil, err
	}

	if _, err := s.store.FindLink(ctx, projectID, phaseID); err == nil {
		return nil, fmt.Errorf("%w: phase is already attached to this project", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	link := &ProjectPhase{
		ID:        ids.New(),
		ProjectID: projectID,
		PhaseID:   phaseID,
	}
	if err := s.store.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// DetachFromProject removes a phase-project link. Detaching a phase
// that is not attached is a no-op.
func (s *PhaseService) DetachFromProject(ctx context.Context, projectID, phaseID string) error {
	if _, err := s.projects.Find(ctx, projectID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: project not found", ErrNotFound)
		}
		return err
	}
	if _, err := s.Phase(ctx, phaseID); err != nil {
		return err
	}
	err := s.store.DeleteLink(ctx, projectID, phaseID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// ListProjectsForPhase returns ids of projects the phase is attached to.
func (s *PhaseService) ListProjectsForPhase(ctx context.Context, phaseID string) ([]string, error) {
	if _, err := s.Phase(ctx, phaseID); err != nil {
		return nil, err
	}
	return s.store.ListProjectsForPhase(ctx, phaseID)
}

// AddDependency records that phaseID depends on dependsOnID. Self
// dependencies and duplicates are conflicts.
func (s *PhaseService) AddDependency(ctx context.Context, phaseID, dependsOnID string) (*PhaseDependency, error) {
	if _, err := s.Phase(ctx, phaseID); err != nil {
		return nil, err
	}
	if _, err := s.Phase(ctx, dependsOnID); err != nil {
		return nil, err
	}
	if phaseID == dependsOnID {
		return nil, fmt.Errorf("%w: phase cannot depend on itself", ErrConflict)
	}

	if _, err := s.store.FindDependency(ctx, phaseID, dependsOnID); err == nil {
		return nil, fmt.Errorf("%w: dependency already exists", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	dep := &PhaseDependency{
		ID:          ids.New(),
		PhaseID:     phaseID,
		DependsOnID: dependsOnID,
	}
	if err := s.store.CreateDependency(ctx, dep); err != nil {
		return nil, err
	}
	return dep, nil
}

// RemoveDependency deletes a dependency link. Removing one that does
// not exist is a no-op.
func (s *PhaseService) RemoveDependency(ctx context.Context, phaseID, dependsOnID string) error {
	if _, err := s.Phase(ctx, phaseID); err != nil {
		return err
	}
	if _, err := s.Phase(ctx, dependsOnID); err != nil {
		return err
	}
	err := s.store.DeleteDependency(ctx, phaseID, dependsOnID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// ListDependencies returns a phase's dependencies ordered by the
// depended-on phase id.
func (s *PhaseService) ListDependencies(ctx context.Context, phaseID string) ([]PhaseDependency, error) {
	if _, err := s.Phase(ctx, phaseID); err != nil {
		return nil, err
	}
	return s.store.ListDependencies(ctx, phaseID)
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripod.studio/internal/ids"
)

// OrgService manages organizations and memberships.
type OrgService struct {
	store OrganizationStore
	now   func() time.Time
}

// NewOrgService builds an OrgService on top of the given store.
func NewOrgService(store OrganizationStore) *OrgService {
	return &OrgService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrganization registers an organization. The slug is lowercased
// and must be unique.
func (s *OrgService) CreateOrganization(ctx context.Context, name, slug string) (*Organization, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name == "" || slug == "" {
		return nil, fmt.Errorf("%w: name and slug are required", ErrInvalidInput)
	}

	if _, err := s.store.FindBySlug(ctx, slug); err == nil {
		return nil, fmt.Errorf("%w: organization slug already exists", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	org := &Organization{
		ID:        ids.New(),
		Name:      name,
		Slug:      slug,
		CreatedAt: s.now(),
	}
	if err := s.store.Create(ctx, org); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("%w: organization slug already exists", ErrConflict)
		}
		return nil, err
	}
	return org, nil
}

// Organization returns the organization with the given id.
func (s *OrgService) Organization(ctx context.Context, id string) (*Organization, error) {
	org, err := s.store.Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: organization not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

// OrganizationBySlug returns the organization with the given slug.
// Lookup is case-insensitive because slugs are stored lowercased.
func (s *OrgService) OrganizationBySlug(ctx context.Context, slug string) (*Organization, error) {
	org, err := s.store.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: organization not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

// ListOrganizations returns all organizations.
func (s *OrgService) ListOrganizations(ctx context.Context) ([]Organization, error) {
	return s.store.List(ctx)
}

// AddMember enrolls a user in an organization. The org-level role
// defaults to "member". A second enrollment is a conflict.
func (s *OrgService) AddMember(ctx context.Context, organizationID, userID, role string) (*OrganizationMember, error) {
	if _, err := s.Organization(ctx, organizationID); err != nil {
		return nil, err
	}
	if role == "" {
		role = "member"
	}

	if _, err := s.store.FindMember(ctx, userID, organizationID); err == nil {
		return nil, fmt.Errorf("%w: user is already a member", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	member := &OrganizationMember{
		ID:             ids.New(),
		OrganizationID: organizationID,
		UserID:         userID,
		Role:           role,
		JoinedAt:       s.now(),
	}
	if err := s.store.AddMember(ctx, member); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("%w: user is already a member", ErrConflict)
		}
		return nil, err
	}
	return member, nil
}

// ListMembers returns an organization's memberships.
func (s *OrgService) ListMembers(ctx context.Context, organizationID string) ([]OrganizationMember, error) {
	if _, err := s.Organization(ctx, organizationID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, organizationID)
}

// IsMember reports whether the user belongs to the organization.
func (s *OrgService) IsMember(ctx context.Context, userID, organizationID string) (bool, error) {
	_, err := s.store.FindMember(ctx, userID, organizationID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

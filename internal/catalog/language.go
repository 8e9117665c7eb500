package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tripod.studio/internal/ids"
)

// LanguageService manages the language catalog.
type LanguageService struct {
	store LanguageStore
	now   func() time.Time
}

// NewLanguageService builds a LanguageService on top of the given store.
func NewLanguageService(store LanguageStore) *LanguageService {
	return &LanguageService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateLanguage registers a language. The code is lowercased and must
// be unique.
func (s *LanguageService) CreateLanguage(ctx context.Context, name, code string) (*Language, error) {
	name = strings.TrimSpace(name)
	code = strings.ToLower(strings.TrimSpace(code))
	if name == "" || code == "" {
		return nil, fmt.Errorf("%w: name and code are required", ErrInvalidInput)
	}

	if _, err := s.store.FindByCode(ctx, code); err == nil {
		return nil, fmt.Errorf("%w: language code already exists", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	lang := &Language{
		ID:        ids.New(),
		Name:      name,
		Code:      code,
		CreatedAt: s.now(),
	}
	if err := s.store.Create(ctx, lang); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("%w: language code already exists", ErrConflict)
		}
		return nil, err
	}
	return lang, nil
}

// Language returns the language with the given id.
func (s *LanguageService) Language(ctx context.Context, id string) (*Language, error) {
	lang, err := s.store.Find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: language not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return lang, nil
}

// LanguageByCode returns the language with the given code.
func (s *LanguageService) LanguageByCode(ctx context.Context, code string) (*Language, error) {
	lang, err := s.store.FindByCode(ctx, strings.ToLower(code))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: language not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return lang, nil
}

// ListLanguages returns all languages ordered by code.
func (s *LanguageService) ListLanguages(ctx context.Context) ([]Language, error) {
	return s.store.List(ctx)
}

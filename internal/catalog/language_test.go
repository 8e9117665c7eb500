package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateLanguageNormalizesCode(t *testing.T) {
	ctx := context.Background()
	svc := NewLanguageService(memLangStore{&memCatalog{}})

	lang, err := svc.CreateLanguage(ctx, "Kazakh", "KK")
	require.NoError(t, err)
	require.Equal(t, "kk", lang.Code)

	found, err := svc.LanguageByCode(ctx, "Kk")
	require.NoError(t, err)
	require.Equal(t, lang.ID, found.ID)
}

func TestCreateLanguageDuplicateCode(t *testing.T) {
	ctx := context.Background()
	svc := NewLanguageService(memLangStore{&memCatalog{}})

	_, err := svc.CreateLanguage(ctx, "Kazakh", "kk")
	require.NoError(t, err)

	_, err = svc.CreateLanguage(ctx, "Kazakh again", "KK")
	require.ErrorIs(t, err, ErrConflict)
}

func TestListLanguagesOrderedByCode(t *testing.T) {
	ctx := context.Background()
	svc := NewLanguageService(memLangStore{&memCatalog{}})

	for _, pair := range [][2]string{{"Russian", "ru"}, {"English", "en"}, {"Kazakh", "kk"}} {
		_, err := svc.CreateLanguage(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	langs, err := svc.ListLanguages(ctx)
	require.NoError(t, err)
	require.Len(t, langs, 3)
	require.Equal(t, []string{"en", "kk", "ru"}, []string{langs[0].Code, langs[1].Code, langs[2].Code})
}

func TestLanguageNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewLanguageService(memLangStore{&memCatalog{}})

	_, err := svc.Language(ctx, "no-such-id")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.LanguageByCode(ctx, "xx")
	require.ErrorIs(t, err, ErrNotFound)
}

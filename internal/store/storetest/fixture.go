// Package storetest seeds small scripture corpora for tests.
package storetest

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/versio/internal/store"
)

// Verse builds a verse in the given volume with one book and chapter per
// volume. Ids are derived so fixtures stay short.
func Verse(id int64, volume string, text string) store.Verse {
	volID := volumeID(volume)
	return store.Verse{
		VolumeID:         volID,
		BookID:           volID * 10,
		ChapterID:        volID * 100,
		VerseID:          id,
		VolumeTitle:      volume,
		BookTitle:        volume + " Book",
		VolumeLongTitle:  "The " + volume,
		BookLongTitle:    "The " + volume + " Book",
		VolumeShortTitle: volume[:2],
		BookShortTitle:   volume[:3],
		VolumeLDSURL:     "https://example.org/" + volume[:2],
		BookLDSURL:       "https://example.org/" + volume[:3],
		ChapterNumber:    1,
		VerseNumber:      int(id),
		ScriptureText:    text,
		VerseTitle:       volume + " 1:" + strconv.FormatInt(id, 10),
		VerseShortTitle:  volume[:3] + " 1:" + strconv.FormatInt(id, 10),
	}
}

func volumeID(title string) int64 {
	switch title {
	case store.VolumeOldTestament:
		return 1
	case store.VolumeNewTestament:
		return 2
	case store.VolumeBookOfMormon:
		return 3
	case store.VolumeDoctrineAndCovenants:
		return 4
	default:
		return 5
	}
}

// LoveAndSun is the two-verse corpus used throughout the engine tests.
func LoveAndSun() []store.Verse {
	return []store.Verse{
		Verse(1, store.VolumeNewTestament, "God is love. Love never fails."),
		Verse(2, store.VolumeOldTestament, "The sun is bright."),
	}
}

// NewStore opens an in-memory store seeded with verses.
func NewStore(t testing.TB, verses ...store.Verse) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	seed(t, s, verses)
	return s
}

// NewFileStore creates a seeded database file under t.TempDir and returns
// its path. The store is closed before returning.
func NewFileStore(t testing.TB, name string, verses ...store.Verse) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	seed(t, s, verses)
	require.NoError(t, s.Checkpoint())
	require.NoError(t, s.Close())
	return path
}

func seed(t testing.TB, s *store.SQLiteStore, verses []store.Verse) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.InitCorpusSchema(ctx))
	require.NoError(t, s.InsertVerses(ctx, verses))
}

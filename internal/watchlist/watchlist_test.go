package watchlist_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stockquote/internal/watchlist"
)

func newStore(t *testing.T) *watchlist.Store {
	t.Helper()
	dir := t.TempDir()
	return &watchlist.Store{
		FavoritesPath: filepath.Join(dir, "favorites.json"),
		IndexesPath:   filepath.Join(dir, "indexes.json"),
	}
}

func TestLoadCreatesDefaults(t *testing.T) {
	t.Parallel()

	s := newStore(t)

	favs, err := s.Load(watchlist.Favorites)
	require.NoError(t, err)
	require.Equal(t, []string{"SH513100", "SH513500", "SH513180", "IBIT"}, favs)
	require.FileExists(t, s.FavoritesPath)

	idx, err := s.Load(watchlist.Indexes)
	require.NoError(t, err)
	require.Contains(t, idx, "HKHSI")
	require.Contains(t, idx, ".DJI")
	require.FileExists(t, s.IndexesPath)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s := newStore(t)

	require.NoError(t, s.Save(watchlist.Favorites, []string{"AAPL", "BTC", "SH600519"}))
	got, err := s.Load(watchlist.Favorites)
	require.NoError(t, err)
	require.Equal(t, []string{"AAPL", "BTC", "SH600519"}, got)
}

func TestLoadNormalizes(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	require.NoError(t, os.WriteFile(s.FavoritesPath, []byte(`{"stocks":[" aapl ","btc","","Tsla"]}`), 0o644))

	got, err := s.Load(watchlist.Favorites)
	require.NoError(t, err)
	require.Equal(t, []string{"AAPL", "BTC", "TSLA"}, got)
}

func TestLoadMalformedFile(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	require.NoError(t, os.WriteFile(s.IndexesPath, []byte(`{not json`), 0o644))

	_, err := s.Load(watchlist.Indexes)
	require.Error(t, err)
}

func TestUnknownKind(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	_, err := s.Load(watchlist.Kind("positions"))
	require.Error(t, err)
	require.Error(t, s.Save(watchlist.Kind("positions"), nil))
}

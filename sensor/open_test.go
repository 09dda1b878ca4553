//go:build darwin || linux

package sensor

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenUnknown(t *testing.T) {
	_, err := Open(SourceConfig{Kind: "spi"})
	require.ErrorIs(t, err, ErrUnknownSource)
}

func TestOpenReplayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,2,3\n"), 0o600))

	src, err := Open(SourceConfig{Kind: KindReplay, ReplayPath: path})
	require.NoError(t, err)
	defer src.Close()

	x, y, z, err := src.ReadAxes()
	require.NoError(t, err)
	require.Equal(t, [3]int16{1, 2, 3}, [3]int16{x, y, z})
	_, _, _, err = src.ReadAxes()
	require.ErrorIs(t, err, io.EOF)
}

func TestOpenReplayMissing(t *testing.T) {
	_, err := Open(SourceConfig{Kind: KindReplay, ReplayPath: filepath.Join(t.TempDir(), "nope.csv")})
	require.ErrorIs(t, err, os.ErrNotExist)
}

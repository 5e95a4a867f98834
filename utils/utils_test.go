package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFrom(t *testing.T) {
	assert.Equal(t, filepath.Join("/opt/bin", "../dataset/x.png"), ResolveFrom("/opt/bin", "../dataset/x.png"))
	assert.Equal(t, "/abs/x.png", ResolveFrom("/opt/bin", "/abs/x.png"))
}

func TestResolvePath_RelativeToExecutable(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	got, err := ResolvePath("x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(exe), filepath.Dir(got))
	assert.Equal(t, filepath.Join(filepath.Dir(exe), "x"), got)

	abs, err := ResolvePath("/data/mask.png")
	require.NoError(t, err)
	assert.Equal(t, "/data/mask.png", abs)
}

func TestUploadName(t *testing.T) {
	name := UploadName(".png")
	assert.True(t, strings.HasPrefix(name, "mask_"))
	assert.True(t, strings.HasSuffix(name, ".png"))
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger("release", "warn"))
	assert.False(t, Logger.Core().Enabled(-1))
	assert.Error(t, InitLogger("debug", "loud"))
	Sync()
}

package service

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// writePNG 用 OpenCV 写出测试掩码，data 按 BGR(A) 顺序排列
func writePNG(t *testing.T, rows, cols int, mt gocv.MatType, data []byte) string {
	t.Helper()
	img, err := gocv.NewMatFromBytes(rows, cols, mt, data)
	require.NoError(t, err)
	defer img.Close()

	path := filepath.Join(t.TempDir(), "mask.png")
	require.True(t, gocv.IMWrite(path, img))
	return path
}

func repeat(px []byte, n int) []byte {
	out := make([]byte, 0, len(px)*n)
	for i := 0; i < n; i++ {
		out = append(out, px...)
	}
	return out
}

func TestLoadMask_GrayscaleStaysLabel(t *testing.T) {
	data := make([]byte, 100)
	for i := 0; i < 25; i++ {
		data[i] = 2
	}
	path := writePNG(t, 10, 10, gocv.MatTypeCV8UC1, data)

	mask, err := LoadMask(path)
	require.NoError(t, err)
	assert.Equal(t, 1, mask.Channels)
	assert.Equal(t, 10, mask.Width)
	assert.Equal(t, 10, mask.Height)
	assert.Equal(t, data, mask.Pix)
}

func TestLoadMask_BGRAIsColor(t *testing.T) {
	path := writePNG(t, 2, 2, gocv.MatTypeCV8UC4, repeat([]byte{0, 128, 128, 255}, 4))

	mask, err := LoadMask(path)
	require.NoError(t, err)
	assert.Equal(t, 3, mask.Channels)
	assert.Equal(t, BGR, mask.Order)
	assert.Equal(t, repeat(bgrForest[:], 4), mask.Pix)
}

func TestLoadMask_HashesFileContent(t *testing.T) {
	path := writePNG(t, 4, 4, gocv.MatTypeCV8UC3, repeat(bgrForest[:], 16))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := md5.Sum(data)

	mask, err := LoadMask(path)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:]), mask.MD5)

	cov, err := NewCoverageCalculator(DefaultClassTable(BGR)).Compute(mask)
	require.NoError(t, err)
	assert.Equal(t, mask.MD5, cov.MD5)
}

func TestLoadMask_Missing(t *testing.T) {
	_, err := LoadMask("/nonexistent/path.png")
	assert.ErrorIs(t, err, ErrMaskNotFound)
}

func TestLoadMask_Undecodable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := LoadMask(path)
	assert.ErrorIs(t, err, ErrMaskNotFound)
}

func TestComputeFile_ColorMaskForest(t *testing.T) {
	path := writePNG(t, 4, 4, gocv.MatTypeCV8UC3, repeat(bgrForest[:], 16))

	calc := NewCoverageCalculator(DefaultClassTable(BGR))
	first, err := calc.ComputeFile(path)
	require.NoError(t, err)
	assertOnly(t, first.Map(), map[string]float64{"Forest": 100.0})

	second, err := calc.ComputeFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeCoverage(t *testing.T) {
	data := make([]byte, 100)
	for i := 0; i < 25; i++ {
		data[i] = 2
	}
	path := writePNG(t, 10, 10, gocv.MatTypeCV8UC1, data)

	got, err := ComputeCoverage(path)
	require.NoError(t, err)
	assertOnly(t, got, map[string]float64{"Road": 25.0})

	_, err = ComputeCoverage("/nonexistent/path.png")
	assert.ErrorIs(t, err, ErrMaskNotFound)
}

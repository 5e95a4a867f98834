package service

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/TIANLI0/MaskCoverage/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

var (
	// ErrMaskNotFound 路径不存在或无法解码为图像
	ErrMaskNotFound = errors.New("mask not found")
	// ErrUnsupportedMask 像素格式既不是单通道也不是三通道 8 位
	ErrUnsupportedMask = errors.New("unsupported mask format")
)

const (
	VariantLabel = "label"
	VariantColor = "color"
)

// Mask 内存中的掩码，Pix 为行优先、通道交错存储
type Mask struct {
	Width    int
	Height   int
	Channels int // 1 为标签掩码，3 为彩色掩码
	Order    ChannelOrder
	Pix      []byte
	MD5      string // 源文件内容的 MD5，内存构造的掩码为空
}

// Variant 根据通道数判断掩码类型
func (m *Mask) Variant() (string, error) {
	switch m.Channels {
	case 1:
		return VariantLabel, nil
	case 3:
		return VariantColor, nil
	}
	return "", fmt.Errorf("%w: %d channels", ErrUnsupportedMask, m.Channels)
}

// Validate 检查尺寸与像素数据是否一致
func (m *Mask) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: empty mask %dx%d", ErrUnsupportedMask, m.Width, m.Height)
	}
	if _, err := m.Variant(); err != nil {
		return err
	}
	if want := m.Width * m.Height * m.Channels; len(m.Pix) != want {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrUnsupportedMask, want, len(m.Pix))
	}
	return nil
}

// LoadMask 使用 OpenCV 读取掩码并计算文件 MD5，文件只读取一次。
// 灰度文件保持单通道，彩色文件按 BGR 顺序解码，带 alpha 的图像丢弃 alpha 通道。
func LoadMask(path string) (*Mask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMaskNotFound, path)
		}
		return nil, fmt.Errorf("failed to read mask: %w", err)
	}

	img, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil || img.Empty() {
		if err == nil {
			img.Close()
		}
		return nil, fmt.Errorf("%w: could not load mask: %s", ErrMaskNotFound, path)
	}
	defer img.Close()

	m, err := maskFromMat(&img)
	if err != nil {
		return nil, err
	}
	sum := md5.Sum(data)
	m.MD5 = hex.EncodeToString(sum[:])
	return m, nil
}

// maskFromMat 将 8 位 Mat 转换为 Mask
func maskFromMat(img *gocv.Mat) (*Mask, error) {
	switch img.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3:
	case gocv.MatTypeCV8UC4:
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(*img, &bgr, gocv.ColorBGRAToBGR)
		img = &bgr
	default:
		return nil, fmt.Errorf("%w: mat type %v", ErrUnsupportedMask, img.Type())
	}

	m := &Mask{
		Width:    img.Cols(),
		Height:   img.Rows(),
		Channels: img.Channels(),
		Order:    BGR,
		Pix:      img.ToBytes(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	utils.Logger.Debug("mask loaded",
		zap.Int("width", m.Width),
		zap.Int("height", m.Height),
		zap.Int("channels", m.Channels))

	return m, nil
}

package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TIANLI0/MaskCoverage/utils"
	"go.uber.org/zap"
)

// ErrPruneNotConfirmed 未经确认不允许删除文件
var ErrPruneNotConfirmed = errors.New("prune not confirmed")

// DatasetReport 图像目录与掩码目录的配对结果，各列表均已排序
type DatasetReport struct {
	ImageDir     string   `json:"image_dir"`
	MaskDir      string   `json:"mask_dir"`
	ImageCount   int      `json:"image_count"`
	MaskCount    int      `json:"mask_count"`
	Paired       []string `json:"paired"`
	OrphanImages []string `json:"orphan_images"` // 没有对应掩码的图像文件名
	OrphanMasks  []string `json:"orphan_masks"`  // 没有对应图像的掩码文件名

	// 同一目录内文件名（去扩展名）重复的多余文件，不参与配对也不会被删除
	DuplicateImages []string `json:"duplicate_images"`
	DuplicateMasks  []string `json:"duplicate_masks"`
}

// Consistent 两个目录是否一一对应
func (r *DatasetReport) Consistent() bool {
	return len(r.OrphanImages) == 0 && len(r.OrphanMasks) == 0 &&
		len(r.DuplicateImages) == 0 && len(r.DuplicateMasks) == 0
}

// CheckDataset 按文件名（去掉扩展名）匹配图像与掩码，不依赖目录列举顺序，不做任何删除
func CheckDataset(imageDir, maskDir string) (*DatasetReport, error) {
	images, err := listFiles(imageDir)
	if err != nil {
		return nil, err
	}
	masks, err := listFiles(maskDir)
	if err != nil {
		return nil, err
	}

	report := &DatasetReport{
		ImageDir:        imageDir,
		MaskDir:         maskDir,
		ImageCount:      len(images),
		MaskCount:       len(masks),
		Paired:          []string{},
		OrphanImages:    []string{},
		OrphanMasks:     []string{},
		DuplicateImages: []string{},
		DuplicateMasks:  []string{},
	}

	imageStems, dupImages := byStem(images)
	maskStems, dupMasks := byStem(masks)
	report.DuplicateImages = append(report.DuplicateImages, dupImages...)
	report.DuplicateMasks = append(report.DuplicateMasks, dupMasks...)

	for _, name := range images {
		s := stem(name)
		if imageStems[s] != name {
			continue
		}
		if _, ok := maskStems[s]; ok {
			report.Paired = append(report.Paired, name)
		} else {
			report.OrphanImages = append(report.OrphanImages, name)
		}
	}
	for _, name := range masks {
		s := stem(name)
		if maskStems[s] != name {
			continue
		}
		if _, ok := imageStems[s]; !ok {
			report.OrphanMasks = append(report.OrphanMasks, name)
		}
	}

	utils.Logger.Info("dataset checked",
		zap.String("image_dir", imageDir),
		zap.String("mask_dir", maskDir),
		zap.Int("images", report.ImageCount),
		zap.Int("masks", report.MaskCount),
		zap.Int("orphan_images", len(report.OrphanImages)),
		zap.Int("orphan_masks", len(report.OrphanMasks)),
		zap.Int("duplicates", len(report.DuplicateImages)+len(report.DuplicateMasks)))

	return report, nil
}

// PruneOrphanImages 删除没有对应掩码的图像，confirmed 为 false 时直接拒绝。
// 返回已删除的文件路径；中途失败时返回已删除部分及错误。
func PruneOrphanImages(report *DatasetReport, confirmed bool) ([]string, error) {
	if !confirmed {
		return nil, ErrPruneNotConfirmed
	}

	removed := make([]string, 0, len(report.OrphanImages))
	for _, name := range report.OrphanImages {
		path := filepath.Join(report.ImageDir, name)
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		utils.Logger.Info("orphan image removed", zap.String("file", path))
		removed = append(removed, path)
	}
	return removed, nil
}

// listFiles 列出目录中的普通文件（跳过子目录与隐藏文件），按名称排序
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// byStem 每个文件名主干只保留排序后的第一个文件，其余作为重复返回
func byStem(names []string) (map[string]string, []string) {
	first := make(map[string]string, len(names))
	var dups []string
	for _, name := range names {
		s := stem(name)
		if _, ok := first[s]; ok {
			dups = append(dups, name)
			continue
		}
		first[s] = name
	}
	return first, dups
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

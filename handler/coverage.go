package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/TIANLI0/MaskCoverage/config"
	"github.com/TIANLI0/MaskCoverage/model"
	"github.com/TIANLI0/MaskCoverage/service"
	"github.com/TIANLI0/MaskCoverage/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CoverageHandler struct {
	cfg        *config.Config
	cache      service.CoverageCache
	calculator *service.CoverageCalculator
}

// NewCoverageHandler cache 为 nil 时不使用缓存
func NewCoverageHandler(cfg *config.Config, cache service.CoverageCache, calculator *service.CoverageCalculator) *CoverageHandler {
	return &CoverageHandler{
		cfg:        cfg,
		cache:      cache,
		calculator: calculator,
	}
}

// Compute 处理掩码上传并返回覆盖率
func (h *CoverageHandler) Compute(c *gin.Context) {
	file, err := c.FormFile("mask")
	if err != nil {
		utils.Logger.Error("failed to get uploaded file", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "请上传掩码文件",
			Error:   err.Error(),
		})
		return
	}

	if file.Size > h.cfg.Upload.MaxSize {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: fmt.Sprintf("文件大小超过限制 (%d MB)", h.cfg.Upload.MaxSize/(1024*1024)),
		})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !h.isAllowedType(contentType) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "不支持的文件类型，仅支持 PNG/BMP/TIFF",
		})
		return
	}

	savePath := filepath.Join(h.cfg.Upload.UploadDir, utils.UploadName(filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, savePath); err != nil {
		utils.Logger.Error("failed to save file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "保存文件失败",
			Error:   err.Error(),
		})
		return
	}

	if h.cfg.Upload.CleanupTempFiles {
		defer func() {
			if err := os.Remove(savePath); err != nil {
				utils.Logger.Warn("failed to delete temp file",
					zap.String("file", savePath),
					zap.Error(err))
			}
		}()
	}

	mask, err := service.LoadMask(savePath)
	if err != nil {
		h.computeFailed(c, err)
		return
	}

	utils.Logger.Info("mask uploaded",
		zap.String("filename", file.Filename),
		zap.String("md5", mask.MD5),
		zap.Int64("size", file.Size))

	ctx := c.Request.Context()
	cacheKey := service.CacheKey(mask.MD5, h.calculator.Table().Order())
	if cached := h.lookup(ctx, cacheKey); cached != nil {
		utils.Logger.Info("cache hit", zap.String("cache_key", cacheKey))
		c.JSON(http.StatusOK, model.CoverageResponse{
			Success: true,
			Message: "计算成功（来自缓存）",
			Data:    cached,
		})
		return
	}

	result, err := h.calculator.Compute(mask)
	if err != nil {
		h.computeFailed(c, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetCoverage(ctx, cacheKey, result); err != nil {
			utils.Logger.Warn("failed to set cache", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, model.CoverageResponse{
		Success: true,
		Message: "计算成功",
		Data:    result,
	})
}

// GetByMD5 根据MD5获取已缓存的覆盖率
func (h *CoverageHandler) GetByMD5(c *gin.Context) {
	md5 := c.Param("md5")
	if md5 == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "MD5参数缺失",
		})
		return
	}

	if h.cache == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Message: "缓存未启用",
		})
		return
	}

	result, err := h.cache.GetCoverage(c.Request.Context(), service.CacheKey(md5, h.calculator.Table().Order()))
	if err != nil {
		utils.Logger.Error("failed to get coverage result", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Message: "查询失败",
			Error:   err.Error(),
		})
		return
	}

	if result == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Message: "未找到该掩码的覆盖率信息",
		})
		return
	}

	c.JSON(http.StatusOK, model.CoverageResponse{
		Success: true,
		Message: "查询成功",
		Data:    result,
	})
}

func (h *CoverageHandler) computeFailed(c *gin.Context, err error) {
	utils.Logger.Error("failed to compute coverage", zap.Error(err))
	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrMaskNotFound) || errors.Is(err, service.ErrUnsupportedMask) {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, model.ErrorResponse{
		Success: false,
		Message: "覆盖率计算失败",
		Error:   err.Error(),
	})
}

func (h *CoverageHandler) lookup(ctx context.Context, key string) *model.Coverage {
	if h.cache == nil {
		return nil
	}
	cached, err := h.cache.GetCoverage(ctx, key)
	if err != nil {
		utils.Logger.Warn("failed to get cache", zap.Error(err))
		return nil
	}
	return cached
}

func (h *CoverageHandler) isAllowedType(contentType string) bool {
	for _, allowed := range h.cfg.Upload.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

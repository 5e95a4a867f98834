package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/TIANLI0/MaskCoverage/config"
	"github.com/TIANLI0/MaskCoverage/model"
	"github.com/TIANLI0/MaskCoverage/report"
	"github.com/TIANLI0/MaskCoverage/service"
	"github.com/TIANLI0/MaskCoverage/utils"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath   string
	channelOrder string
	logLevel     string
	asJSON       bool
	useCache     bool
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := pflag.NewFlagSet("coverage", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Compute per-class percentage area coverage from an annotation mask.")
		fmt.Fprintln(stderr, "\nUsage: coverage [flags] [mask_path]")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.configPath, "config", "config.yaml", "path to the YAML config file")
	fs.StringVar(&opts.channelOrder, "channel-order", "", "channel order of the class palette (bgr|rgb), overrides config")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level for diagnostics on stderr")
	fs.BoolVar(&opts.asJSON, "json", false, "print the coverage result as JSON")
	fs.BoolVar(&opts.useCache, "cache", false, "look up and store results in redis by file md5")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "Error: expected at most one mask path")
		fs.Usage()
		return 1
	}

	cfg := config.New(opts.configPath)
	if err := utils.InitLogger(cfg.Log.Mode, opts.logLevel); err != nil {
		fmt.Fprintf(stdout, "Error: failed to initialize logger: %v\n", err)
		return 1
	}
	defer utils.Sync()

	maskArg := cfg.Coverage.DefaultMaskPath
	if fs.NArg() == 1 {
		maskArg = fs.Arg(0)
	}

	order := cfg.Coverage.ChannelOrder
	if opts.channelOrder != "" {
		order = opts.channelOrder
	}

	cov, err := compute(cfg, maskArg, order, opts.useCache)
	if err != nil {
		if errors.Is(err, service.ErrMaskNotFound) {
			fmt.Fprintf(stdout, "Error: File not found: %s\n", maskArg)
		} else {
			fmt.Fprintf(stdout, "Error: %v\n", err)
		}
		return 1
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(cov)
	} else {
		err = report.Render(stdout, cov)
	}
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	return 0
}

// compute 解析路径并计算覆盖率，启用缓存时以文件 MD5 先查 redis
func compute(cfg *config.Config, maskArg, order string, useCache bool) (*model.Coverage, error) {
	channelOrder, err := service.ParseChannelOrder(order)
	if err != nil {
		return nil, err
	}

	maskPath, err := utils.ResolvePath(maskArg)
	if err != nil {
		return nil, err
	}

	calculator := service.NewCoverageCalculator(service.DefaultClassTable(channelOrder))
	if !useCache && !cfg.Redis.Enabled {
		return calculator.ComputeFile(maskPath)
	}

	mask, err := service.LoadMask(maskPath)
	if err != nil {
		return nil, err
	}

	redisService := service.NewRedisService(&cfg.Redis)
	defer redisService.Close()

	ctx := context.Background()
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var cache service.CoverageCache
	if err := redisService.Ping(pingCtx); err != nil {
		utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
	} else {
		cache = redisService
	}

	key := service.CacheKey(mask.MD5, channelOrder)
	if cache != nil {
		cached, err := cache.GetCoverage(ctx, key)
		if err != nil {
			utils.Logger.Warn("failed to get cache", zap.Error(err))
		} else if cached != nil {
			utils.Logger.Debug("cache hit", zap.String("cache_key", key))
			return cached, nil
		}
	}

	cov, err := calculator.Compute(mask)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.SetCoverage(ctx, key, cov); err != nil {
			utils.Logger.Warn("failed to set cache", zap.Error(err))
		}
	}
	return cov, nil
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/TIANLI0/MaskCoverage/config"
	"github.com/TIANLI0/MaskCoverage/service"
	"github.com/TIANLI0/MaskCoverage/utils"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		configPath string
		imageDir   string
		maskDir    string
		logLevel   string
		prune      bool
		assumeYes  bool
	)
	fs := pflag.NewFlagSet("datasetcheck", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	fs.StringVar(&imageDir, "images", "", "image directory, overrides config")
	fs.StringVar(&maskDir, "masks", "", "mask directory, overrides config")
	fs.StringVar(&logLevel, "log-level", "warn", "log level for diagnostics on stderr")
	fs.BoolVar(&prune, "prune", false, "delete images that have no matching mask (asks for confirmation)")
	fs.BoolVarP(&assumeYes, "yes", "y", false, "confirm pruning without prompting")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg := config.New(configPath)
	if err := utils.InitLogger(cfg.Log.Mode, logLevel); err != nil {
		fmt.Fprintf(stdout, "Error: failed to initialize logger: %v\n", err)
		return 1
	}
	defer utils.Sync()

	if imageDir == "" {
		imageDir = cfg.Dataset.ImageDir
	}
	if maskDir == "" {
		maskDir = cfg.Dataset.MaskDir
	}
	var err error
	if imageDir, err = utils.ResolvePath(imageDir); err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	if maskDir, err = utils.ResolvePath(maskDir); err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	report, err := service.CheckDataset(imageDir, maskDir)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	printReport(stdout, report)

	if report.Consistent() {
		return 0
	}
	if !prune || len(report.OrphanImages) == 0 {
		return 1
	}

	confirmed := assumeYes
	if !confirmed {
		fmt.Fprintf(stdout, "Delete %d orphan image(s) from %s? [y/N]: ", len(report.OrphanImages), report.ImageDir)
		confirmed = readYes(stdin)
	}

	removed, err := service.PruneOrphanImages(report, confirmed)
	for _, path := range removed {
		fmt.Fprintf(stdout, "removed: %s\n", path)
	}
	if err != nil {
		if errors.Is(err, service.ErrPruneNotConfirmed) {
			fmt.Fprintln(stdout, "Aborted, nothing deleted.")
		} else {
			fmt.Fprintf(stdout, "Error: %v\n", err)
		}
		return 1
	}

	if len(report.OrphanMasks) > 0 || len(report.DuplicateImages) > 0 || len(report.DuplicateMasks) > 0 {
		return 1
	}
	return 0
}

func printReport(w io.Writer, r *service.DatasetReport) {
	fmt.Fprintf(w, "images count: %d\n", r.ImageCount)
	fmt.Fprintf(w, "masks count: %d\n", r.MaskCount)
	fmt.Fprintf(w, "paired: %d\n", len(r.Paired))
	for _, name := range r.OrphanImages {
		fmt.Fprintf(w, "image without mask: %s\n", name)
	}
	for _, name := range r.OrphanMasks {
		fmt.Fprintf(w, "mask without image: %s\n", name)
	}
	for _, name := range r.DuplicateImages {
		fmt.Fprintf(w, "duplicate image name: %s\n", name)
	}
	for _, name := range r.DuplicateMasks {
		fmt.Fprintf(w, "duplicate mask name: %s\n", name)
	}
}

func readYes(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/platform-allocator/internal/allocator"
	"github.com/eugenenazirov/platform-allocator/internal/input"
	"github.com/eugenenazirov/platform-allocator/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

// run reads weights and a limit, prints the platform count, and returns the exit status.
func run(args []string, stdin io.Reader, stdout io.Writer) int {
	kingpinApp := kingpin.New("platforms", "Prints the minimum number of platforms for the weights on line one and the limit on line two")
	showPlan := kingpinApp.Flag("plan", "Also print one platform per line").Bool()
	inputFile := kingpinApp.Flag("input", "Read from this file instead of stdin").ExistingFile()
	logLevel := kingpinApp.Flag("log-level", "Log level for diagnostics on stderr").Default("warn").String()

	if _, err := kingpinApp.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "platforms: %v\n", err)
		return 2
	}

	logger, err := logging.NewCLI(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "platforms: %v\n", err)
		return 2
	}
	defer func() {
		_ = logger.Sync()
	}()

	src := stdin
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			logger.Error("open input", zap.String("path", *inputFile), zap.Error(err))
			return 1
		}
		defer f.Close()
		src = f
	}

	req, err := input.Parse(src)
	if err != nil {
		logger.Error("invalid input", zap.Error(err))
		return 1
	}
	logger.Debug("parsed input", zap.Int("items", len(req.Weights)), zap.Float64("limit", req.Limit))

	alloc := allocator.New()
	if !*showPlan {
		count, err := alloc.MinPlatforms(req.Weights, req.Limit)
		if err != nil {
			logger.Error("allocation rejected", zap.Error(err))
			return 1
		}
		fmt.Fprintln(stdout, input.FormatCount(count))
		return 0
	}

	plan, err := alloc.Allocate(req.Weights, req.Limit)
	if err != nil {
		logger.Error("allocation rejected", zap.Error(err))
		return 1
	}
	fmt.Fprintln(stdout, input.FormatCount(plan.Count()))
	for _, platform := range plan.Platforms {
		fmt.Fprintln(stdout, formatPlatform(platform))
	}
	if n := plan.Overweight(); n > 0 {
		logger.Warn("items exceed the limit and travel alone", zap.Int("count", n))
	}
	return 0
}

func formatPlatform(p allocator.Platform[float64]) string {
	parts := make([]string, len(p.Items))
	for i, w := range p.Items {
		parts[i] = strconv.FormatFloat(w, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

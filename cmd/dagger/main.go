package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/goccy/go-json"
	"github.com/gregwebs/go-recovery"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stoewer/go-strcase"

	"github.com/damianw/dagger/codegen"
	"github.com/damianw/dagger/component"
	"github.com/damianw/dagger/requirement"
	"github.com/damianw/dagger/typemodel"
)

var (
	configPath string
	targetDir  string
	outputDir  string
	reportPath string
	prettyLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "dagger",
	Short: "Compile-time dependency injection code generator",
}

var generateCmd = &cobra.Command{
	Use:   "generate [patterns...]",
	Short: "Generate component builders for the matched packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := makeLogger()

		cfg, err := loadConfig(configPath, targetDir)
		if err != nil {
			return err
		}
		if outputDir != "" {
			cfg.Output = outputDir
		}
		if reportPath != "" {
			cfg.Report = reportPath
		}

		patterns := args
		if len(patterns) == 0 {
			patterns = cfg.Patterns
		}
		if len(patterns) == 0 {
			patterns = []string{"./..."}
		}

		// An unhandled requirement kind panics deep in the pass; surface
		// it as a fatal error instead of a bare crash.
		return recovery.Call(func() error {
			return generate(logger, cfg, patterns)
		})
	},
}

func makeLogger() zerolog.Logger {
	var output io.Writer = os.Stderr
	if prettyLogs {
		output = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// reportEntry is one classified requirement in the JSON report.
type reportEntry struct {
	Component string `json:"component"`
	Type      string `json:"type"`
	Kind      string `json:"kind"`
	Policy    string `json:"policy"`
	Variable  string `json:"variable"`
}

func generate(logger zerolog.Logger, cfg config, patterns []string) error {
	universe, err := typemodel.Load(typemodel.LoadConfig{
		Dir:        targetDir,
		BuildFlags: cfg.BuildFlags,
	}, patterns...)
	if err != nil {
		return err
	}

	components, err := component.Discover(universe, component.Options{Exclude: cfg.Exclude})
	if err != nil {
		return err
	}
	if len(components) == 0 {
		logger.Warn().Strs("patterns", patterns).Msg("no components found")
		return nil
	}

	outPkgPath, outPkgName := "", ""
	if cfg.Output != "" {
		if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		outPkgPath, err = resolvePackagePath(cfg.Output)
		if err != nil {
			return fmt.Errorf("resolve output package: %w", err)
		}
		outPkgName = packageNameFor(cfg.Output)
	}

	var report []reportEntry
	for _, comp := range components {
		for _, req := range comp.Requirements {
			policy := requirement.Resolve(req, universe)
			logger.Debug().
				Stringer("component", comp.Ref).
				Stringer("type", req.TypeRef()).
				Stringer("kind", req.Kind()).
				Stringer("policy", policy).
				Msg("classified requirement")
			report = append(report, reportEntry{
				Component: comp.Ref.String(),
				Type:      req.TypeRef().String(),
				Kind:      req.Kind().String(),
				Policy:    policy.String(),
				Variable:  req.VariableName(),
			})
		}

		file, err := emit(comp, universe, outPkgPath, outPkgName)
		if err != nil {
			return err
		}

		path := outputPath(comp, cfg.Output)
		if err := file.Save(path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info().
			Stringer("component", comp.Ref).
			Int("requirements", len(comp.Requirements)).
			Str("path", path).
			Msg("generated component builder")
	}

	if cfg.Report != "" {
		if err := writeReport(cfg.Report, report); err != nil {
			return err
		}
		logger.Info().Str("path", cfg.Report).Msg("wrote classification report")
	}
	return nil
}

func emit(comp component.Component, universe *typemodel.Universe, pkgPath, pkgName string) (*jen.File, error) {
	if pkgPath == "" {
		return codegen.Generate(comp, universe)
	}
	return codegen.GenerateInto(comp, universe, pkgPath, pkgName)
}

func outputPath(comp component.Component, output string) string {
	name := "dagger_" + strcase.SnakeCase(comp.Ref.SimpleName()) + ".go"
	if output != "" {
		return filepath.Join(output, name)
	}
	return filepath.Join(filepath.Dir(comp.File), name)
}

func packageNameFor(dir string) string {
	name := filepath.Base(dir)
	name = strings.ReplaceAll(name, "-", "_")
	return strings.ReplaceAll(name, ".", "_")
}

func writeReport(path string, entries []reportEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func main() {
	generateCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (default .dagger.yaml)")
	generateCmd.Flags().StringVar(&targetDir, "dir", "", "working directory for package loading")
	generateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "emit all generated files into this directory")
	generateCmd.Flags().StringVar(&reportPath, "report", "", "write a JSON classification report to this path")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", false, "human-readable log output")
	rootCmd.AddCommand(generateCmd)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

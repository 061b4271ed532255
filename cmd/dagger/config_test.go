package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dagger.yaml")
	const body = `patterns:
  - ./...
exclude:
  - "**/testdata/**"
output: gen
report: dagger-report.json
build_flags:
  - -tags=integration
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Patterns) != 1 || cfg.Patterns[0] != "./..." {
		t.Errorf("patterns = %v", cfg.Patterns)
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "**/testdata/**" {
		t.Errorf("exclude = %v", cfg.Exclude)
	}
	if cfg.Output != "gen" || cfg.Report != "dagger-report.json" {
		t.Errorf("output/report = %q/%q", cfg.Output, cfg.Report)
	}
	if len(cfg.BuildFlags) != 1 || cfg.BuildFlags[0] != "-tags=integration" {
		t.Errorf("build flags = %v", cfg.BuildFlags)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), ""); err == nil {
		t.Error("explicit missing config must error")
	}
}

func TestLoadConfigDefaultInTargetDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, defaultConfigName), []byte("output: gen\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("", dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "gen" {
		t.Errorf("output = %q", cfg.Output)
	}

	// A missing default config in the target directory is not an error.
	cfg, err = loadConfig("", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "" {
		t.Errorf("output = %q, want empty", cfg.Output)
	}
}

func TestResolvePackagePath(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/proj\n\ngo 1.25.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	gen := filepath.Join(root, "internal", "gen")
	if err := os.MkdirAll(gen, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := resolvePackagePath(gen)
	if err != nil {
		t.Fatal(err)
	}
	if got != "example.com/proj/internal/gen" {
		t.Errorf("package path = %q", got)
	}

	got, err = resolvePackagePath(root)
	if err != nil {
		t.Fatal(err)
	}
	if got != "example.com/proj" {
		t.Errorf("module root package path = %q", got)
	}
}

func TestPackageNameFor(t *testing.T) {
	if got := packageNameFor("out/my-gen.pkg"); got != "my_gen_pkg" {
		t.Errorf("packageNameFor = %q", got)
	}
}

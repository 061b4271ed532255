package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// defaultConfigName is looked up in the target directory (or the
// process working directory) when no --config flag is given.
const defaultConfigName = ".dagger.yaml"

type config struct {
	// Patterns are package patterns to scan, defaulting to "./...".
	Patterns []string `yaml:"patterns"`
	// Exclude lists doublestar globs; components declared in matching
	// files are skipped.
	Exclude []string `yaml:"exclude"`
	// Output is a directory to emit all generated files into. Empty
	// means next to each component's source file.
	Output string `yaml:"output"`
	// Report is a path to write the JSON classification report to.
	Report string `yaml:"report"`
	// BuildFlags are passed through to the build system.
	BuildFlags []string `yaml:"build_flags"`
}

// loadConfig reads the config at path. When path is empty the default
// name is looked up in dir, so that --dir moves both package loading
// and config discovery together.
func loadConfig(path, dir string) (config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, defaultConfigName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config{}, nil
		}
		return config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// resolvePackagePath walks up from dir to the enclosing go.mod and
// derives the import path of dir from the module path.
func resolvePackagePath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	root := abs
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(root)
		if parent == root {
			return "", fmt.Errorf("no go.mod found above %s", dir)
		}
		root = parent
	}

	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", err
	}
	modPath := modfile.ModulePath(data)
	if modPath == "" {
		return "", fmt.Errorf("no module path in %s", filepath.Join(root, "go.mod"))
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return modPath, nil
	}
	return modPath + "/" + filepath.ToSlash(rel), nil
}

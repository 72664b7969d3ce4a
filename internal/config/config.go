// Package config contains the loader and typed model for the optional
// .worklink.yaml repository configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors .worklink.yaml. Action inputs and command flags always take
// precedence; the file only supplies defaults for values nothing else set.
type Config struct {
	// Checks holds defaults for the compliance check toggles.
	Checks ChecksConfig `yaml:"checks,omitempty"`
	// Organization is the default Azure DevOps organization name.
	Organization string `yaml:"organization,omitempty"`
}

// ChecksConfig holds default values for the check toggles.
type ChecksConfig struct {
	// PullRequest toggles the pull request title/body check.
	PullRequest bool `yaml:"pullRequest,omitempty"`
	// Commits toggles the per-commit check.
	Commits bool `yaml:"commits,omitempty"`
	// FailOnMissingCommitLink fails the run on the first unreferenced commit.
	FailOnMissingCommitLink bool `yaml:"failOnMissingCommitLink,omitempty"`
	// LinkCommitsToPullRequest links referenced work items to the pull request.
	LinkCommitsToPullRequest bool `yaml:"linkCommitsToPullRequest,omitempty"`
	// CommentOnFailure posts or updates a status comment on failures.
	CommentOnFailure bool `yaml:"commentOnFailure,omitempty"`
}

// Load reads the configuration at path. A missing file yields a zero config
// without error so the tool runs unconfigured repositories unchanged.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return &cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

type SourceType string

const (
	SourceConfigFile  SourceType = "config_file"
	SourceEnvironment SourceType = "environment"
	SourceDefaults    SourceType = "defaults"
)

// SourceSelection records which config source won and why.
type SourceSelection struct {
	Type   SourceType
	Path   string
	Reason string
}

type resolveFileState int

const (
	resolveFilePresent resolveFileState = iota
	resolveFileMissing
	resolveFileUnreadable
)

type ResolveOptions struct {
	EnvPath       string
	PreferredPath string
	inspectFile   func(path string) (resolveFileState, error)
}

func inspectConfigFile(path string) (resolveFileState, error) {
	f, err := os.Open(path)
	if err == nil {
		_ = f.Close()
		return resolveFilePresent, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return resolveFileMissing, nil
	}

	if errors.Is(err, fs.ErrPermission) {
		return resolveFileUnreadable, nil
	}

	return resolveFileMissing, fmt.Errorf("inspect config file %q: %w", path, err)
}

// ResolveConfigSource returns a single deterministic config winner without
// parsing. An explicit AUTO_IDLE_CONFIG path wins even when the file does not
// exist yet, so that Save writes it there.
func ResolveConfigSource(opts ResolveOptions) (SourceSelection, error) {
	if opts.EnvPath != "" {
		return SourceSelection{Type: SourceEnvironment, Path: opts.EnvPath, Reason: "selected by " + EnvConfigPath}, nil
	}

	inspect := opts.inspectFile
	if inspect == nil {
		inspect = inspectConfigFile
	}

	path := opts.PreferredPath
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return SourceSelection{}, err
		}
		path = p
	}

	state, err := inspect(path)
	if err != nil {
		return SourceSelection{}, err
	}

	switch state {
	case resolveFilePresent:
		return SourceSelection{Type: SourceConfigFile, Path: path, Reason: "selected config path"}, nil
	case resolveFileUnreadable:
		return SourceSelection{Type: SourceDefaults, Path: path, Reason: "config path is unreadable, using defaults"}, nil
	default:
		return SourceSelection{Type: SourceDefaults, Path: path, Reason: "no config file found, using defaults"}, nil
	}
}

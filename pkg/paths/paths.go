package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/TouchController/E1epack/pkg/config"
	"github.com/TouchController/E1epack/pkg/errors"
	"github.com/TouchController/E1epack/pkg/logging"
)

// Environment variable names
const (
	// EnvRoot selects the project root when no explicit root is given
	EnvRoot = "E1EPACK_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Source records which rule produced a root
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceEnv      Source = "env"
	SourceConfig   Source = "config"
	SourceGit      Source = "git"
	SourceFallback Source = "cwd"
)

// Root is a resolved, absolute project root
type Root struct {
	Path   string
	Source Source
}

// UsedFallback reports whether the working directory was used because
// nothing else matched
func (r Root) UsedFallback() bool {
	return r.Source == SourceFallback
}

// FindRoot resolves the project root. explicit may be empty.
func FindRoot(explicit string) (Root, error) {
	logger := logging.GetLogger("paths")

	root, err := findRoot(explicit)
	if err != nil {
		return Root{}, err
	}

	abs, err := filepath.Abs(root.Path)
	if err != nil {
		return Root{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for project root").
			WithDetail("path", root.Path)
	}
	root.Path = abs

	if root.UsedFallback() {
		logger.Warn().Str("root", root.Path).Msg("No project config or git repository found, using current directory")
	} else {
		logger.Debug().Str("root", root.Path).Str("source", string(root.Source)).Msg("Project root resolved")
	}
	return root, nil
}

func findRoot(explicit string) (Root, error) {
	if explicit != "" {
		return Root{Path: ExpandHome(explicit), Source: SourceExplicit}, nil
	}
	if env := os.Getenv(EnvRoot); env != "" {
		return Root{Path: ExpandHome(env), Source: SourceEnv}, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return Root{}, errors.Wrap(err, errors.ErrFileAccess, "failed to get current directory")
	}

	if dir, ok := findConfigDir(cwd); ok {
		return Root{Path: dir, Source: SourceConfig}, nil
	}
	if gitRoot, err := findGitRoot(cwd); err == nil {
		return Root{Path: gitRoot, Source: SourceGit}, nil
	}
	return Root{Path: cwd, Source: SourceFallback}, nil
}

// findConfigDir walks up from dir to the first directory holding a
// project config file
func findConfigDir(dir string) (string, bool) {
	for {
		for _, name := range config.ProjectConfigFiles {
			if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// findGitRoot asks git for the top level of the repository containing dir
func findGitRoot(dir string) (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrNotFound, "git root is empty")
	}
	return gitRoot, nil
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user is left alone
	return path
}

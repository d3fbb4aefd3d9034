package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Path returns the configuration file location: $RUSH_CONFIG when set,
// otherwise config.yaml under the user's ~/.config/rush directory. An
// unresolvable home directory yields "", which Load treats as no file.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rush", ConfigName)
}

// Load reads the configuration file at path. A missing file or an empty
// path yields the defaults; a malformed, unknown-keyed or invalid file is
// an error. Keys absent from the file keep their default values.
func Load(fsys afero.Fs, path string) (*Config, error) {
	out := Default()
	if path == "" {
		return out, nil
	}

	contents, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

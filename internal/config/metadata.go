package config

import (
	"errors"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/labdocs/internal/logfields"
	"git.home.luguber.info/inful/labdocs/internal/value"
)

// MetadataKey is the reserved top-level key holding generation metadata.
const MetadataKey = "_metadata"

// Metadata describes one generation run.
type Metadata struct {
	GeneratedAt      time.Time
	Environment      string
	ConfigPath       string
	GeneratorVersion string
	BuildID          string
	// ConfigRevision is the HEAD commit of the repository holding the
	// configuration directory, empty when it is not under git.
	ConfigRevision string
}

// Value renders the metadata as the mapping stored under MetadataKey.
func (m Metadata) Value() value.Value {
	out := value.Mapping()
	out.Set("generated_at", value.Scalar(m.GeneratedAt.Format(time.RFC3339)))
	out.Set("environment", value.Scalar(m.Environment))
	out.Set("config_path", value.Scalar(m.ConfigPath))
	out.Set("generator_version", value.Scalar(m.GeneratorVersion))
	out.Set("build_id", value.Scalar(m.BuildID))
	if m.ConfigRevision != "" {
		out.Set("config_revision", value.Scalar(m.ConfigRevision))
	}
	return out
}

// configRevision returns the HEAD hash of the git work tree containing dir.
func configRevision(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if !errors.Is(err, git.ErrRepositoryNotExists) {
			slog.Debug("Unable to open configuration repository", logfields.Path(dir), logfields.Error(err))
		}
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		slog.Debug("Configuration repository has no HEAD", logfields.Path(dir), logfields.Error(err))
		return ""
	}
	return ref.Hash().String()
}

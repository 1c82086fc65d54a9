package version

// Version is the generator version stamped into generated metadata.
// Override at build time:
// go build -ldflags "-X git.home.luguber.info/inful/labdocs/internal/version.Version=1.1.0".
var Version = "1.0.0"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

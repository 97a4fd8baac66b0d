package buildinfo

// Version holds the library's version string.
// It's a `var` so it can be set at compile time using ldflags.
// Example: go build -ldflags="-X github.com/paulschiretz/pgl-confirmfs/pkg/buildinfo.Version=1.0.0"
var Version = "dev"

// Name is the canonical name of the library used for logging.
var Name = "PGL-ConfirmFS"

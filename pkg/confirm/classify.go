package confirm

import (
	"github.com/paulschiretz/pgl-confirmfs/pkg/fsdriver"
)

// Classify reports what currently occupies path. The answer is read fresh
// from the filesystem on every call.
func (c *Confirmer) Classify(path string) (fsdriver.Kind, error) {
	abs, err := resolve("classify", path)
	if err != nil {
		return fsdriver.Missing, err
	}
	return c.classify(abs)
}

// FileExists reports whether path is an existing file.
func (c *Confirmer) FileExists(path string) (bool, error) {
	kind, err := c.Classify(path)
	return kind == fsdriver.File, err
}

// DirectoryExists reports whether path is an existing directory.
func (c *Confirmer) DirectoryExists(path string) (bool, error) {
	kind, err := c.Classify(path)
	return kind == fsdriver.Directory, err
}

func (c *Confirmer) classify(abs string) (fsdriver.Kind, error) {
	kind, err := c.driver.Stat(abs)
	if err != nil {
		return fsdriver.Missing, newIOError("stat", abs, err)
	}
	return kind, nil
}

package confirm

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/paulschiretz/pgl-confirmfs/pkg/fsdriver"
)

// ComputeFileDigest returns the uppercase hex SHA-256 of the file at path.
// The read is not retried; a file being written concurrently may yield a stale digest.
func (c *Confirmer) ComputeFileDigest(path string) (string, error) {
	abs, err := resolve("digest", path)
	if err != nil {
		return "", err
	}

	kind, err := c.classify(abs)
	if err != nil {
		return "", err
	}
	if kind != fsdriver.File {
		return "", newArgumentError("digest", abs, "not an existing file (found %s)", kind)
	}

	r, err := c.driver.Open(abs)
	if err != nil {
		return "", newIOError("open", abs, err)
	}
	defer r.Close()

	bufPtr := c.buffers.Get()
	defer c.buffers.Put(bufPtr)

	h := sha256.New()
	if _, err := io.CopyBuffer(h, r, *bufPtr); err != nil {
		return "", newIOError("read", abs, err)
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}

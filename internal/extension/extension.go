// Package extension installs the batch-save browser extension: unpacking the
// CRX archive and deriving the identifier Chrome assigns to an unpacked
// extension, which is needed to address its pages.
package extension

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BatchSavePage is the extension page that exposes the batch download UI.
const BatchSavePage = "src/ui/pages/batch-save-urls.html"

// Unpack extracts the CRX archive at crxPath into dir. CRX files prepend a
// signature header to a zip payload; archive/zip locates the central
// directory from the end of the file, so the header needs no stripping.
func Unpack(crxPath, dir string) error {
	zr, err := zip.OpenReader(crxPath)
	if err != nil {
		return fmt.Errorf("invalid or corrupted extension file: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		name := filepath.Clean(f.Name)
		if name == ".." || strings.HasPrefix(name, ".."+string(os.PathSeparator)) {
			continue
		}
		dst := filepath.Join(dir, name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, dst); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ID derives the extension identifier for an unpacked extension: the sha256
// of the cleaned load path with each hex digit shifted into the a-p
// alphabet, truncated to 32 characters.
func ID(dir string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(dir)))
	digest := hex.EncodeToString(sum[:])
	id := make([]byte, 32)
	for i := 0; i < 32; i++ {
		id[i] = 'a' + hexVal(digest[i])
	}
	return string(id)
}

// PageURL addresses a page inside the unpacked extension.
func PageURL(id, page string) string {
	return "chrome-extension://" + id + "/" + page
}

func hexVal(c byte) byte {
	if c >= 'a' {
		return c - 'a' + 10
	}
	return c - '0'
}

package tracker

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"urlsnap/pkg/model"
)

// Report packages the current mapping for transport: each matched file is
// read in full, gzip-compressed and base64-encoded. A file that cannot be
// read or encoded yields an entry with a null content and the error message,
// so partial success survives per URL.
func (t *Tracker) Report() model.Report {
	out := make(model.Report, len(t.mapping))
	for u, name := range t.mapping {
		path := filepath.Join(t.dir, name)
		entry := model.ReportEntry{Filename: name}
		encoded, err := encodeFile(path)
		if err != nil {
			t.log.Err(err, "report encoding failed", "path", path)
			entry.Error = err.Error()
		} else {
			entry.Content = &encoded
		}
		out[u] = entry
	}
	return out
}

func encodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not valid utf-8 text", filepath.Base(path))
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

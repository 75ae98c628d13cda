// Package tracker reconciles files appearing in a download directory with
// the URLs that were requested. The browser gives no URL-to-filename
// linkage, so the tracker diffs directory snapshots on every poll tick and
// hands new files to the match selector, claiming each file for at most one
// URL and rolling back claims whose file fails verification.
package tracker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"urlsnap/internal/logger"
	"urlsnap/internal/match"
	"urlsnap/pkg/model"
)

// crdownloadSuffix marks a transfer Chrome has not finished writing yet.
const crdownloadSuffix = ".crdownload"

type Tracker struct {
	dir      string
	urls     []string // requested URLs, deduplicated, insertion order
	initial  map[string]struct{}
	claimed  map[string]struct{}
	mapping  map[string]string // url -> claimed filename
	selector *match.Selector
	log      logger.Logger
}

// New snapshots dir and registers urls (duplicates collapse to one). The
// directory must exist and be listable.
func New(dir string, urls []string, selector *match.Selector, l logger.Logger) (*Tracker, error) {
	if l == nil {
		l = logger.NewNop()
	}
	t := &Tracker{
		dir:      dir,
		initial:  make(map[string]struct{}),
		claimed:  make(map[string]struct{}),
		mapping:  make(map[string]string),
		selector: selector,
		log:      l,
	}
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		t.urls = append(t.urls, u)
	}
	names, err := t.list()
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		t.initial[n] = struct{}{}
	}
	return t, nil
}

// CheckNewDownloads runs one poll tick: discover files that appeared since
// the initial snapshot, wait out in-progress transfers, match pending URLs
// against the unclaimed new files and verify every fresh claim. It reports
// whether every requested URL now has a verified file. A tick with no new
// files leaves the mapping untouched.
func (t *Tracker) CheckNewDownloads() bool {
	current, err := t.list()
	if err != nil {
		t.log.Warn("directory listing failed", "dir", t.dir, "error", err.Error())
		return t.complete()
	}
	newFiles := t.diff(current)

	// Transfers still carry their temp name; re-list until they settle. The
	// loop breaks as soon as the listing stops changing between checks, so a
	// stalled transfer cannot spin it forever.
	for hasInProgress(newFiles) {
		next, err := t.list()
		if err != nil {
			break
		}
		if equalNames(next, current) {
			break
		}
		current = next
		newFiles = t.diff(current)
	}

	if len(newFiles) > 0 {
		t.assign(newFiles)
	}
	return t.complete()
}

// assign proposes the best candidate per pending URL, then resolves claims
// highest score first so that a file wanted by two URLs goes to the better
// match; equal scores fall back to URL request order. The losing URL stays
// pending and retries on a later tick.
func (t *Tracker) assign(newFiles []string) {
	type proposal struct {
		url   string
		order int
		file  string
		score int
	}
	var props []proposal
	for i, u := range t.urls {
		if _, done := t.mapping[u]; done {
			continue
		}
		file, score := t.selector.Best(u, newFiles, t.dir)
		if file == "" {
			continue
		}
		props = append(props, proposal{url: u, order: i, file: file, score: score})
	}
	sort.SliceStable(props, func(i, j int) bool {
		if props[i].score != props[j].score {
			return props[i].score > props[j].score
		}
		return props[i].order < props[j].order
	})

	for _, p := range props {
		if _, taken := t.claimed[p.file]; taken {
			continue
		}
		t.mapping[p.url] = p.file
		t.claimed[p.file] = struct{}{}
		t.log.Info("matched url to file", "url", p.url, "file", p.file, "score", p.score)

		path := filepath.Join(t.dir, p.file)
		if !Verify(path) {
			t.log.Warn("file verification failed", "path", path)
			delete(t.mapping, p.url)
			delete(t.claimed, p.file)
		}
	}
}

// Verify reports whether path exists and its first KiB reads non-empty. Any
// read or permission error counts as failure.
func Verify(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, 1024)
	n, _ := f.Read(buf)
	return n > 0
}

// Mapping returns a copy of the current URL-to-filename bindings.
func (t *Tracker) Mapping() map[string]string {
	out := make(map[string]string, len(t.mapping))
	for k, v := range t.mapping {
		out[k] = v
	}
	return out
}

// Pending returns the requested URLs that have no verified file yet.
func (t *Tracker) Pending() []string {
	var out []string
	for _, u := range t.urls {
		if _, done := t.mapping[u]; !done {
			out = append(out, u)
		}
	}
	return out
}

// Stats reports how many of the requested URLs are matched so far.
func (t *Tracker) Stats() model.SessionStats {
	return model.SessionStats{Requested: len(t.urls), Matched: len(t.mapping)}
}

func (t *Tracker) complete() bool {
	return len(t.mapping) == len(t.urls)
}

// list returns the directory entries sorted by name so tie-breaks between
// equally scored candidates stay deterministic.
func (t *Tracker) list() ([]string, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (t *Tracker) diff(current []string) []string {
	var out []string
	for _, n := range current {
		if _, ok := t.initial[n]; ok {
			continue
		}
		if _, ok := t.claimed[n]; ok {
			continue
		}
		out = append(out, n)
	}
	return out
}

func hasInProgress(names []string) bool {
	for _, n := range names {
		if strings.HasSuffix(n, crdownloadSuffix) {
			return true
		}
	}
	return false
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

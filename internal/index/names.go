package index

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
)

// Names maps sequence identifiers to their English names, loaded from the
// names dump. Like Dump it is immutable between reloads.
type Names struct {
	mu    sync.RWMutex
	path  string
	names map[string]string
}

// LoadNames reads a names dump from path. Gzip-compressed dumps are
// detected by the .gz suffix.
func LoadNames(path string) (*Names, error) {
	n := &Names{path: path}
	if err := n.Reload(); err != nil {
		return nil, err
	}
	return n, nil
}

// Reload re-reads the names file from disk.
func (n *Names) Reload() error {
	f, err := os.Open(n.path)
	if err != nil {
		return seqerrors.New(seqerrors.ErrCodeDumpNotFound,
			fmt.Sprintf("cannot open names dump %s", n.path), err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(n.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return seqerrors.New(seqerrors.ErrCodeDumpCorrupt,
				fmt.Sprintf("names dump %s is not valid gzip", n.path), err)
		}
		defer gz.Close()
		r = gz
	}

	names := make(map[string]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: "A000045 Fibonacci numbers: ..."
		id, name, ok := strings.Cut(line, " ")
		if !ok || !idPattern.MatchString(id) {
			continue
		}
		names[id] = strings.TrimSpace(name)
	}
	if err := scanner.Err(); err != nil {
		return seqerrors.New(seqerrors.ErrCodeDumpCorrupt, "cannot read names dump", err)
	}

	n.mu.Lock()
	n.names = names
	n.mu.Unlock()
	return nil
}

// Len returns the number of loaded names.
func (n *Names) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.names)
}

// Get returns the name for an identifier, or "" when unknown.
func (n *Names) Get(id string) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.names[id]
}

// All returns a copy of the identifier to name map.
func (n *Names) All() map[string]string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]string, len(n.names))
	for k, v := range n.names {
		out[k] = v
	}
	return out
}

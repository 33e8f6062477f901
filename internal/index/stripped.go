// Package index loads the local sequence dumps (the stripped terms file
// and the names file) and maintains the full-text names index used by the
// names command.
package index

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	seqerrors "github.com/probelabs/seqprobe/internal/errors"
)

// maxLineBytes bounds a single dump line. Real stripped lines stay well
// under 4KB; anything larger is treated as corruption.
const maxLineBytes = 1 << 20

var idPattern = regexp.MustCompile(`^A\d{6,7}$`)

// Entry is one sequence from the stripped dump. body keeps the raw
// comma-delimited term text for the substring pre-filter, so a scan can
// reject most lines without parsing a single integer.
type Entry struct {
	ID    string
	Terms []int64

	body string
}

// Dump is an in-memory stripped dump. It is immutable after load; Reload
// swaps the whole entry slice under the lock.
type Dump struct {
	mu      sync.RWMutex
	path    string
	entries []Entry
	byID    map[string]int
}

// LoadStripped reads a stripped dump from path. Gzip-compressed dumps are
// detected by the .gz suffix and decompressed transparently.
func LoadStripped(path string) (*Dump, error) {
	d := &Dump{path: path}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reload re-reads the dump from disk, replacing the current contents.
func (d *Dump) Reload() error {
	f, err := os.Open(d.path)
	if err != nil {
		return seqerrors.New(seqerrors.ErrCodeDumpNotFound,
			fmt.Sprintf("cannot open dump %s", d.path), err).
			WithSuggestion("download the stripped dump and point --offline-stripped at it")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(d.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return seqerrors.New(seqerrors.ErrCodeDumpCorrupt,
				fmt.Sprintf("dump %s is not valid gzip", d.path), err)
		}
		defer gz.Close()
		r = gz
	}

	entries, byID, err := parseStripped(r)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.entries = entries
	d.byID = byID
	d.mu.Unlock()
	return nil
}

func parseStripped(r io.Reader) ([]Entry, map[string]int, error) {
	var entries []Entry
	byID := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: "A000045 ,0,1,1,2,3,5,8,..."
		id, body, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		id = strings.TrimSpace(id)
		if !idPattern.MatchString(id) {
			continue
		}

		body = strings.Trim(strings.TrimSpace(body), ",")
		terms, err := parseTermBody(body)
		if err != nil {
			return nil, nil, seqerrors.New(seqerrors.ErrCodeDumpCorrupt,
				fmt.Sprintf("bad term list for %s at line %d", id, lineNo), err)
		}
		if len(terms) == 0 {
			continue
		}

		byID[id] = len(entries)
		entries = append(entries, Entry{ID: id, Terms: terms, body: "," + body + ","})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, seqerrors.New(seqerrors.ErrCodeDumpCorrupt, "cannot read dump", err)
	}

	return entries, byID, nil
}

func parseTermBody(body string) ([]int64, error) {
	if body == "" {
		return nil, nil
	}
	parts := strings.Split(body, ",")
	terms := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		terms = append(terms, v)
	}
	return terms, nil
}

// Len returns the number of loaded sequences.
func (d *Dump) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Lookup returns the sequence with the given identifier.
func (d *Dump) Lookup(id string) (Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.byID[id]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i], true
}

// Scan returns up to maxScan entries whose term text contains the query
// terms as a contiguous comma-delimited substring. The substring check is
// a cheap pre-filter: the caller still scores every returned entry, and a
// zero maxScan means no cap.
func (d *Dump) Scan(queryTerms []int64, maxScan int) []Entry {
	needle := termNeedle(queryTerms)

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Entry
	for _, e := range d.entries {
		if !strings.Contains(e.body, needle) {
			continue
		}
		out = append(out, e)
		if maxScan > 0 && len(out) >= maxScan {
			break
		}
	}
	return out
}

// termNeedle renders terms as ",a,b,c," so a substring hit can only start
// and end on term boundaries.
func termNeedle(terms []int64) string {
	var b strings.Builder
	b.WriteByte(',')
	for _, t := range terms {
		b.WriteString(strconv.FormatInt(t, 10))
		b.WriteByte(',')
	}
	return b.String()
}

package event

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ImportOptions controls a bulk import run.
type ImportOptions struct {
	AppID int
	// GBK transcodes the input from GBK to UTF-8 before parsing; legacy
	// exports from older deployments are GBK-encoded.
	GBK bool
}

// ImportFile loads newline-delimited JSON events into the store. It is
// all-or-nothing per line: the first malformed line aborts the import and
// reports its line number.
func ImportFile(store *Store, path string, opts ImportOptions) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ImportReader(store, f, opts)
}

// ImportReader is ImportFile over an arbitrary reader.
func ImportReader(store *Store, r io.Reader, opts ImportOptions) (int, error) {
	if opts.GBK {
		r = transform.NewReader(r, simplifiedchinese.GBK.NewDecoder())
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	imported := 0
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var e Event
		if err := json.Unmarshal([]byte(text), &e); err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		e.AppID = opts.AppID
		if err := store.Insert(&e); err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return imported, err
	}
	return imported, nil
}

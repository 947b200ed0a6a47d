package message

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Queue is a snapshot of the review file: the messages waiting in it and
// how many bytes of the file they occupy.
type Queue struct {
	Path  string
	Lines []string
	size  int64
}

// ReadQueue reads the review file at path. A missing file is an empty queue.
func ReadQueue(path string) (*Queue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Queue{Path: path}, nil
		}
		return nil, fmt.Errorf("reading review file: %w", err)
	}
	lines, err := ParseBatch(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Queue{Path: path, Lines: lines, size: int64(len(data))}, nil
}

// Consume drops the snapshot's lines from the review file and keeps anything
// appended since ReadQueue. The file is removed once nothing is left.
func (q *Queue) Consume() error {
	data, err := os.ReadFile(q.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading review file: %w", err)
	}
	if int64(len(data)) < q.size {
		return fmt.Errorf("review file %s shrank while importing", q.Path)
	}

	rest := data[q.size:]
	if len(bytes.TrimSpace(rest)) == 0 {
		if err := os.Remove(q.Path); err != nil {
			return fmt.Errorf("removing review file: %w", err)
		}
		return nil
	}

	tmp := q.Path + ".tmp"
	if err := os.WriteFile(tmp, rest, 0o644); err != nil {
		return fmt.Errorf("writing review file: %w", err)
	}
	if err := os.Rename(tmp, q.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing review file: %w", err)
	}
	return nil
}

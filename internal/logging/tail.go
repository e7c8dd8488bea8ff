package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Entry is one decoded line of the log file.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Err       string
	Raw       string // set when the line is not a JSON event
}

// Tail returns at most maxLines entries from the end of the log at path,
// oldest first. A missing file yields no entries.
func Tail(path string, maxLines int) ([]Entry, error) {
	if maxLines <= 0 || path == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, next := 0, 0
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	start := 0
	if count == maxLines {
		start = next
	}
	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		entries = append(entries, parseEntry(ring[(start+i)%maxLines]))
	}
	return entries, nil
}

func parseEntry(line string) Entry {
	var raw struct {
		Time      string `json:"time"`
		Level     string `json:"level"`
		Component string `json:"component"`
		Message   string `json:"message"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{Raw: line}
	}
	e := Entry{
		Level:     raw.Level,
		Component: raw.Component,
		Message:   raw.Message,
		Err:       raw.Error,
	}
	if t, err := time.Parse(time.RFC3339, raw.Time); err == nil {
		e.Time = t
	}
	return e
}

// Package loki ships log lines to a Loki push endpoint. A Writer sits next to
// stdout behind an io.MultiWriter so the zap logger keeps its console output.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const pushPath = "/loki/api/v1/push"

type Options struct {
	// Labels are added to the stream next to job.
	Labels    map[string]string
	BatchSize int
	Interval  time.Duration
	Client    *http.Client
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type Writer struct {
	endpoint  string
	labels    map[string]string
	batchSize int
	client    *http.Client

	mu      sync.Mutex
	pending [][2]string

	dropped atomic.Int64
	flush   chan struct{}
	stop    chan struct{}
	stopped sync.WaitGroup
	once    sync.Once
}

// NewWriter returns nil when either baseURL or job is empty so callers can
// treat Loki as optional.
func NewWriter(baseURL, job string, opts Options) *Writer {
	if baseURL == "" || job == "" {
		return nil
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 5 * time.Second}
	}

	labels := make(map[string]string, len(opts.Labels)+1)
	for k, v := range opts.Labels {
		labels[k] = v
	}
	labels["job"] = job

	w := &Writer{
		endpoint:  strings.TrimSuffix(baseURL, "/") + pushPath,
		labels:    labels,
		batchSize: opts.BatchSize,
		client:    opts.Client,
		flush:     make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
	w.stopped.Add(1)
	go w.run(opts.Interval)
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	now := time.Now()

	w.mu.Lock()
	for _, line := range bytes.Split(p, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		w.pending = append(w.pending, [2]string{strconv.FormatInt(now.UnixNano(), 10), string(line)})
	}
	full := len(w.pending) >= w.batchSize
	w.mu.Unlock()

	if full {
		// Never push from the caller: Write runs under zap's sink lock.
		select {
		case w.flush <- struct{}{}:
		default:
		}
	}
	return len(p), nil
}

// Sync pushes everything buffered so far.
func (w *Writer) Sync() error {
	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := w.push(batch); err != nil {
		w.dropped.Add(int64(len(batch)))
		return err
	}
	return nil
}

// Dropped reports how many lines failed to reach Loki.
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}

func (w *Writer) push(batch [][2]string) error {
	body, err := json.Marshal(pushRequest{Streams: []stream{{Stream: w.labels, Values: batch}}})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("loki push: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (w *Writer) run(interval time.Duration) {
	defer w.stopped.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			_ = w.Sync()
		case <-w.flush:
			_ = w.Sync()
		}
	}
}

// Close stops the background flusher and pushes what is left. Safe to call twice.
func (w *Writer) Close() error {
	var err error
	w.once.Do(func() {
		close(w.stop)
		w.stopped.Wait()
		err = w.Sync()
	})
	return err
}

package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/yaelren/3DTrail/material"
	"github.com/yaelren/3DTrail/pool"
)

// DefaultMaxBytes caps the size of a fetched model.
const DefaultMaxBytes = 64 << 20

// Asset is a decoded model ready to back an instance pool.
type Asset struct {
	Shape  pool.Shape
	Base   material.Base
	Source string
}

// Loaded reports whether the asset holds a drawable shape.
func (a Asset) Loaded() bool { return a.Shape != nil }

// Decoder turns fetched bytes into an Asset. Decode runs on the thread that
// calls Loader.Poll, so it may touch the GPU.
type Decoder interface {
	Decode(src string, format Format, data []byte) (Asset, error)
	Release(a Asset)
}

// Result is the outcome of one load request.
type Result struct {
	Source        string
	UserTriggered bool
	Asset         Asset
	Err           error
}

type fetched struct {
	gen    uint64
	src    string
	user   bool
	format Format
	data   []byte
	err    error
}

// Loader fetches one model at a time in the background. A new Request
// supersedes the one in flight: its fetch is cancelled and its result, if
// it still arrives, is discarded.
type Loader struct {
	MaxBytes int64

	dec    Decoder
	client *http.Client

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	pending *fetched
	busy    bool
}

// NewLoader returns a loader decoding with dec. A nil client gets a default
// one with a 30s timeout.
func NewLoader(dec Decoder, client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Loader{MaxBytes: DefaultMaxBytes, dec: dec, client: client}
}

// Request starts loading src, a local path or an http(s) URL.
func (l *Loader) Request(ctx context.Context, src string, userTriggered bool) {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.pending = nil
	l.busy = true
	l.mu.Unlock()

	go func() {
		defer cancel()
		res := &fetched{gen: gen, src: src, user: userTriggered}
		res.data, res.err = l.fetch(ctx, src)
		if res.err == nil {
			var err error
			res.format, err = Sniff(res.data, src)
			if err != nil {
				res.err = newError(KindUnsupported, src, err)
				res.data = nil
			}
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if gen != l.gen {
			return
		}
		l.pending = res
		l.busy = false
	}()
}

// Busy reports whether a request is in flight.
func (l *Loader) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busy
}

// Poll returns the finished request, if any, decoding it on the caller's
// thread.
func (l *Loader) Poll() (Result, bool) {
	l.mu.Lock()
	f := l.pending
	l.pending = nil
	l.mu.Unlock()
	if f == nil {
		return Result{}, false
	}

	res := Result{Source: f.src, UserTriggered: f.user}
	if f.err != nil {
		res.Err = f.err
		return res, true
	}
	a, err := l.dec.Decode(f.src, f.format, f.data)
	if err != nil {
		var ae *Error
		if !errors.As(err, &ae) {
			err = newError(KindUnsupported, f.src, err)
		}
		res.Err = err
		return res, true
	}
	if !a.Loaded() {
		l.dec.Release(a)
		res.Err = NoMesh(f.src)
		return res, true
	}
	if a.Source == "" {
		a.Source = f.src
	}
	res.Asset = a
	return res, true
}

// Release frees a decoded asset.
func (l *Loader) Release(a Asset) {
	if a.Loaded() {
		l.dec.Release(a)
	}
}

// Close cancels any request in flight.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.pending = nil
	l.busy = false
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, error) {
	var (
		r   io.ReadCloser
		err error
	)
	if isURL(src) {
		r, err = l.open(ctx, src)
	} else {
		r, err = os.Open(src)
	}
	if err != nil {
		return nil, newError(KindFetch, src, err)
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, l.MaxBytes+1))
	if err != nil {
		return nil, newError(KindFetch, src, err)
	}
	if int64(len(data)) > l.MaxBytes {
		return nil, newError(KindFetch, src, fmt.Errorf("larger than %d bytes", l.MaxBytes))
	}
	return data, nil
}

func (l *Loader) open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

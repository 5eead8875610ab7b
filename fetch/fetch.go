// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package fetch downloads remote sources to a local mirror with retries and
// an on-disk cache. The cache is keyed by source identity (the URL); a hit
// within the TTL short-circuits the network entirely, which is what lets the
// pipeline rerun over a year of trip files without re-downloading any of
// them. Stores are idempotent: payloads are written to a temp file and
// renamed into place.
package fetch

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when the remote side reports the source does not
// exist. It is a permanent condition - callers should drop the source, not
// retry it.
var ErrNotFound = errors.New("source not found")

const fetchBucket = "fetches"

// Policy bounds the network behavior of a Fetcher: how many attempts a
// download gets, the base of the doubling backoff between attempts, and how
// long a cached payload stays fresh for plain Fetch calls.
type Policy struct {
	MaxAttempts int
	BackoffBase time.Duration
	CacheTTL    time.Duration
}

// DefaultPolicy returns the standard policy: 5 attempts, 200ms doubling
// backoff, one hour TTL.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BackoffBase: 200 * time.Millisecond,
		CacheTTL:    time.Hour,
	}
}

// Fetcher mirrors remote sources into a local directory. Safe for use from a
// single pipeline run; the bolt index serializes concurrent opens.
type Fetcher struct {
	Policy     Policy
	Dir        string
	S3Region   string
	HTTPClient *http.Client

	db *bolt.DB
}

type cacheEntry struct {
	Path      string    `json:"path"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewFetcher opens (creating if needed) a mirror directory and its cache
// index.
func NewFetcher(dir string, policy Policy) (*Fetcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}
	db, err := bolt.Open(filepath.Join(dir, "fetch.db"), 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "opening cache index")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(fetchBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating cache bucket")
	}
	return &Fetcher{
		Policy:     policy,
		Dir:        dir,
		S3Region:   "us-east-1",
		HTTPClient: http.DefaultClient,
		db:         db,
	}, nil
}

// Close releases the cache index.
func (f *Fetcher) Close() error {
	return f.db.Close()
}

// Fetch retrieves rawurl using the policy TTL and a cache name derived from
// the URL. It returns the local path of the payload.
func (f *Fetcher) Fetch(rawurl string) (string, error) {
	return f.FetchAs(rawurl, cacheName(rawurl), f.Policy.CacheTTL)
}

// FetchAs retrieves rawurl into Dir/name. A ttl <= 0 means the payload never
// expires once fetched (monthly trip files are immutable); otherwise a cached
// payload older than ttl is re-fetched. Bare local paths pass through
// untouched so tests and pre-mirrored data need no network at all.
func (f *Fetcher) FetchAs(rawurl, name string, ttl time.Duration) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", errors.Wrapf(err, "parsing url %q", rawurl)
	}
	if u.Scheme == "" || u.Scheme == "file" {
		p := u.Path
		if u.Scheme == "" {
			p = rawurl
		}
		if _, err := os.Stat(p); err != nil {
			return "", ErrNotFound
		}
		return p, nil
	}

	if p, ok := f.cached(rawurl, ttl); ok {
		return p, nil
	}

	dst := filepath.Join(f.Dir, name)
	var lastErr error
	for attempt := 0; attempt < f.Policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(f.Policy.BackoffBase << uint(attempt-1))
		}
		err := f.fetchOnce(u, dst)
		if err == nil {
			if err := f.record(rawurl, dst); err != nil {
				return "", err
			}
			return dst, nil
		}
		if errors.Cause(err) == ErrNotFound {
			return "", err
		}
		log.Printf("fetch %s attempt %d/%d: %v", rawurl, attempt+1, f.Policy.MaxAttempts, err)
		lastErr = err
	}
	return "", errors.Wrapf(lastErr, "fetching %s after %d attempts", rawurl, f.Policy.MaxAttempts)
}

func (f *Fetcher) cached(key string, ttl time.Duration) (string, bool) {
	var entry cacheEntry
	err := f.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(fetchBucket)).Get([]byte(key))
		if v == nil {
			return errors.New("miss")
		}
		return json.Unmarshal(v, &entry)
	})
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(entry.Path); err != nil {
		return "", false
	}
	if ttl > 0 && time.Since(entry.FetchedAt) > ttl {
		return "", false
	}
	return entry.Path, true
}

func (f *Fetcher) record(key, path string) error {
	v, err := json.Marshal(cacheEntry{Path: path, FetchedAt: time.Now()})
	if err != nil {
		return errors.Wrap(err, "marshaling cache entry")
	}
	err = f.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(fetchBucket)).Put([]byte(key), v)
	})
	return errors.Wrap(err, "recording fetch")
}

func (f *Fetcher) fetchOnce(u *url.URL, dst string) error {
	tmp, err := os.CreateTemp(f.Dir, ".fetch-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	switch u.Scheme {
	case "http", "https":
		err = f.fetchHTTP(u, tmp)
	case "s3":
		err = f.fetchS3(u, tmp)
	default:
		err = errors.Errorf("unsupported scheme %q", u.Scheme)
	}
	if cerr := tmp.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "closing temp file")
	}
	if err != nil {
		return err
	}
	return errors.Wrap(os.Rename(tmp.Name(), dst), "renaming into cache")
}

func (f *Fetcher) fetchHTTP(u *url.URL, w io.Writer) error {
	resp, err := f.HTTPClient.Get(u.String())
	if err != nil {
		return errors.Wrap(err, "getting")
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return errors.Errorf("status %s", resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	return errors.Wrap(err, "copying body")
}

// cacheName derives a stable file name from a URL: the path base, with a
// short hash suffix when a query string distinguishes otherwise-identical
// paths.
func cacheName(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return hashName(rawurl)
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return hashName(rawurl)
	}
	if u.RawQuery != "" {
		return base + "-" + hashName(rawurl)
	}
	return base
}

func hashName(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

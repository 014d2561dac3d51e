// MIT License
//
// Copyright (c) 2024 sphinx-core
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package receipt keeps an audit log of verification verdicts in LevelDB.
package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// keyPrefix namespaces receipts inside the database.
const keyPrefix = "receipt/"

// ErrNotFound is returned by Get for an unknown fingerprint.
var ErrNotFound = errors.New("receipt not found")

// Receipt records the outcome of one verification.
type Receipt struct {
	Fingerprint string    `json:"fingerprint"` // Hex fingerprint of (params, message, signature, public key)
	Params      string    `json:"params"`      // Parameter set name
	Valid       bool      `json:"valid"`
	Error       string    `json:"error,omitempty"` // Structural error, if any
	VerifiedAt  time.Time `json:"verifiedAt"`
}

// Store persists receipts keyed by fingerprint.
type Store struct {
	db *leveldb.DB
}

// Open opens or creates a receipt database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenMemory opens a store that lives only as long as the process.
func OpenMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores r, replacing any receipt with the same fingerprint.
func (s *Store) Put(r Receipt) error {
	if r.Fingerprint == "" {
		return errors.New("receipt has no fingerprint")
	}
	if r.VerifiedAt.IsZero() {
		r.VerifiedAt = time.Now().UTC()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Put([]byte(keyPrefix+r.Fingerprint), data, nil)
}

// Get loads the receipt stored under fingerprint.
func (s *Store) Get(fingerprint string) (*Receipt, error) {
	data, err := s.db.Get([]byte(keyPrefix+fingerprint), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("corrupt receipt %s: %w", fingerprint, err)
	}
	return &r, nil
}

// Count returns the number of stored receipts.
func (s *Store) Count() (int, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(keyPrefix)), nil)
	defer iter.Release()

	n := 0
	for iter.Next() {
		n++
	}
	return n, iter.Error()
}

// Prune deletes the oldest receipts so that at most keep remain, and returns
// how many were removed.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	type entry struct {
		key []byte
		at  time.Time
	}
	var entries []entry

	iter := s.db.NewIterator(util.BytesPrefix([]byte(keyPrefix)), nil)
	for iter.Next() {
		var r Receipt
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			iter.Release()
			return 0, fmt.Errorf("corrupt receipt %s: %w", iter.Key(), err)
		}
		entries = append(entries, entry{key: append([]byte(nil), iter.Key()...), at: r.VerifiedAt})
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, err
	}
	if len(entries) <= keep {
		return 0, nil
	}

	// Oldest first; ties broken by key so pruning is deterministic.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].at.Equal(entries[j].at) {
			return entries[i].at.Before(entries[j].at)
		}
		return string(entries[i].key) < string(entries[j].key)
	})

	drop := len(entries) - keep
	batch := new(leveldb.Batch)
	for _, e := range entries[:drop] {
		batch.Delete(e.key)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return 0, err
	}
	return drop, nil
}

// Package storage persists the public artifacts of the elections in a
// prefixed key-value store. The following prefixes are used:
//   - 'e/' for elections (key config, roster and closed flag)
//   - 'b/' for accepted ballots, append only
//   - 'n/' for the accepted ballot count of each position
//   - 'r/' for published results
//
// Key shares and private keys are never stored.
package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"

	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
)

var (
	electionPrefix = []byte("e/")
	ballotPrefix   = []byte("b/")
	countPrefix    = []byte("n/")
	resultsPrefix  = []byte("r/")
)

var (
	// ErrNotFound is returned when an artifact is not in the store.
	ErrNotFound = errors.New("not found")
	// ErrElectionExists is returned when creating an election twice.
	ErrElectionExists = errors.New("election already exists")
	// ErrElectionClosed is returned when pushing ballots to a closed election.
	ErrElectionClosed = errors.New("election is closed")
	// ErrElectionOpen is returned when publishing results of an open election.
	ErrElectionOpen = errors.New("election is not closed")
	// ErrDuplicateBallot is returned when a ballot ID is already stored.
	ErrDuplicateBallot = errors.New("ballot already stored")
)

// Storage wraps a key-value database. Read-modify-write sequences are
// serialized by a global lock.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex
}

// New creates a new Storage instance.
func New(database db.Database) *Storage {
	return &Storage{db: database}
}

// Close closes the storage.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		log.Warnw("error closing storage", "error", err.Error())
	}
}

// encodeArtifact uses the deterministic CBOR encoding so equal artifacts
// always produce equal bytes.
func encodeArtifact(a any) ([]byte, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return em.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// getArtifact decodes the artifact stored under prefix/key into out.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	data, err := prefixeddb.NewPrefixedReader(s.db, prefix).Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := decodeArtifact(data, out); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	return nil
}

// setArtifact encodes and writes the artifact in its own transaction.
func (s *Storage) setArtifact(prefix, key []byte, a any) error {
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := setIn(wTx, key, a); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

func setIn(wTx db.WriteTx, key []byte, a any) error {
	data, err := encodeArtifact(a)
	if err != nil {
		return err
	}
	return wTx.Set(key, data)
}

// has reports whether prefix/key is set.
func (s *Storage) has(prefix, key []byte) (bool, error) {
	_, err := prefixeddb.NewPrefixedReader(s.db, prefix).Get(key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

// listKeys returns the keys under prefix/sub, without the prefixes.
func (s *Storage) listKeys(prefix, sub []byte) ([][]byte, error) {
	var keys [][]byte
	err := prefixeddb.NewPrefixedReader(s.db, prefix).Iterate(sub, func(k, _ []byte) bool {
		keys = append(keys, append([]byte(nil), k...))
		return true
	})
	return keys, err
}

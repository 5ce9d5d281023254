// Package journal records emitted records in a bbolt file so an
// operator can ask for recent output without watching the live feed.
//
// The journal is an optional sink outside the merging core; nothing
// in the tick path depends on it.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"log"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("ticks")

// Entry is one journaled tick.
type Entry struct {
	At     time.Time     `json:"at"`
	Record []interface{} `json:"record"`
}

type Journal struct {
	Debug bool

	// Cap limits how many entries are kept.  When a write pushes
	// the count past Cap, the oldest entries go.  Zero means
	// unlimited.
	Cap int

	filename string
	db       *bolt.DB
}

// Open opens (creating if necessary) the journal file.
func Open(filename string) (*Journal, error) {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(filename, 0644, opts)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{
		filename: filename,
		db:       db,
	}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) logf(format string, args ...interface{}) {
	if j.Debug {
		log.Printf("Journal."+format, args...)
	}
}

// Append journals one emitted record.
func (j *Journal) Append(rec []interface{}) error {
	e := Entry{
		At:     time.Now().UTC(),
		Record: rec,
	}
	js, err := json.Marshal(&e)
	if err != nil {
		return err
	}

	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		if err = b.Put(key, js); err != nil {
			return err
		}
		j.logf("Append %d (%d bytes)", seq, len(js))

		if 0 < j.Cap {
			// Keys are the sequence numbers, deleted only
			// from the head, so the head key tells us how
			// many entries there are.
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.First() {
				first := binary.BigEndian.Uint64(k)
				if seq-first < uint64(j.Cap) {
					break
				}
				if err = b.Delete(k); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(n int) ([]Entry, error) {
	entries := make([]Entry, 0, n)
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.Last(); k != nil && len(entries) < n; k, v = c.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Len returns the number of journaled entries.
func (j *Journal) Len() (int, error) {
	var n int
	err := j.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n, err
}

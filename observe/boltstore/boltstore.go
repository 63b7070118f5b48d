/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package boltstore provides an observe.Observable whose properties
// live in a bbolt database.
//
// A Store is an endpoint adapter: a binding can keep a live object's
// property synchronized with a persisted one.  The Store persists
// property values only; it knows nothing about bindings.
package boltstore

import (
	"encoding/json"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/dave-mccloskey/beansbinding/observe"

	bolt "go.etcd.io/bbolt"
)

// A Store keeps its properties in one bbolt bucket, JSON-encoded,
// with a write-through cache in front.  Get serves from the cache;
// Set writes the database first and then the cache, so a property a
// subscriber hears about is already durable.
//
// Values go through JSON, so what comes back after a reopen has the
// generic shapes JSON gives: numbers are float64s, maps are
// map[string]interface{}, and so on.  Store values accordingly.
//
// Unlike the rest of package observe, a Store is safe for concurrent
// use, but notifications still run synchronously on the goroutine
// that called Set.
type Store struct {
	Debug bool

	filename string
	bucket   []byte
	db       *bolt.DB

	sync.Mutex
	cache map[string]interface{}
	subs  map[string][]observe.Listener
}

// NotOpen occurs when a write is attempted before Open (or after a
// failed one).
var NotOpen = errors.New("store not open")

// NewStore makes a Store backed by the given file, with its
// properties in the bucket of the given name.  Nothing touches the
// disk until Open.
func NewStore(filename, name string) (*Store, error) {
	return &Store{
		filename: filename,
		bucket:   []byte(name),
		cache:    make(map[string]interface{}),
		subs:     make(map[string][]observe.Listener),
	}, nil
}

// Open opens the database, creates the Store's bucket if necessary,
// and loads the cache.
func (s *Store) Open() error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(s.bucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			var x interface{}
			if err := json.Unmarshal(v, &x); err != nil {
				return err
			}
			s.cache[string(k)] = x
			return nil
		})
	})
	if err != nil {
		db.Close()
		return err
	}

	s.db = db
	return nil
}

// Close closes the database.  The cache survives, so reads still
// work, but writes will fail.
func (s *Store) Close() error {
	if s.db == nil {
		return NotOpen
	}
	return s.db.Close()
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("boltstore.Store."+format, args...)
	}
}

// Get returns the cached value of the named property, or the
// Unreadable sentinel when the Store has no such property.
func (s *Store) Get(name string) interface{} {
	s.Lock()
	v, have := s.cache[name]
	s.Unlock()
	if !have {
		return observe.Unreadable
	}
	return v
}

// Set writes the named property to the database and then updates the
// cache and notifies subscribers.  Writing the Unreadable sentinel
// (or a value JSON can't encode) is an error.
func (s *Store) Set(name string, value interface{}) error {
	if s.db == nil {
		return NotOpen
	}
	if observe.IsUnreadable(value) {
		return &observe.WrongType{Name: name, Value: value}
	}

	js, err := json.Marshal(&value)
	if err != nil {
		return err
	}

	s.logf("Set %s %s", name, js)

	s.Lock()
	old, had := s.cache[name]
	s.Unlock()

	if had {
		// Encoded forms are this Store's notion of equality.
		if js0, err := json.Marshal(&old); err == nil && string(js0) == string(js) {
			return nil
		}
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(name), js)
	})
	if err != nil {
		return err
	}

	s.Lock()
	s.cache[name] = value
	s.Unlock()

	if !had {
		old = observe.Unreadable
	}
	s.notify(name, old, value)
	return nil
}

// Delete removes the named property from the database and the cache.
// Subscribers hear a change to Unreadable.
func (s *Store) Delete(name string) error {
	if s.db == nil {
		return NotOpen
	}
	s.logf("Delete %s", name)

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(name))
	})
	if err != nil {
		return err
	}

	s.Lock()
	old, had := s.cache[name]
	delete(s.cache, name)
	s.Unlock()

	if had {
		s.notify(name, old, observe.Unreadable)
	}
	return nil
}

// Properties returns the property names, sorted.
func (s *Store) Properties() []string {
	s.Lock()
	names := make([]string, 0, len(s.cache))
	for name := range s.cache {
		names = append(names, name)
	}
	s.Unlock()
	sort.Strings(names)
	return names
}

func (s *Store) Subscribe(name string, l observe.Listener) {
	s.Lock()
	defer s.Unlock()
	for _, have := range s.subs[name] {
		if have == l {
			return
		}
	}
	s.subs[name] = append(s.subs[name], l)
}

func (s *Store) Unsubscribe(name string, l observe.Listener) {
	s.Lock()
	defer s.Unlock()
	for i, have := range s.subs[name] {
		if have == l {
			s.subs[name] = append(s.subs[name][:i:i], s.subs[name][i+1:]...)
			return
		}
	}
}

func (s *Store) notify(name string, old, new interface{}) {
	s.Lock()
	ls := append([]observe.Listener{}, s.subs[name]...)
	ls = append(ls, s.subs[""]...)
	s.Unlock()
	for _, l := range ls {
		l.PropertyChanged(s, name, old, new)
	}
}

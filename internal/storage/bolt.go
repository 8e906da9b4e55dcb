// Package storage persists collection snapshots in an embedded bbolt
// database. Each collection is one opaque JSON blob under a fixed key,
// mirroring the browser localStorage contract this application replaces.
package storage

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/barrigacheea/marketplace/internal/produto"
	"github.com/barrigacheea/marketplace/internal/user"
)

var (
	bucketName  = []byte("barriga-cheea")
	keyProdutos = []byte("barriga-cheea-produtos")
	keyUsers    = []byte("barriga-cheea-users")
)

// Bolt is a snapshot store backed by a single bbolt file.
type Bolt struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "opening bolt database")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating bucket")
	}

	return &Bolt{db: db}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// SaveProdutos overwrites the persisted listing snapshot.
func (b *Bolt) SaveProdutos(produtos []produto.Produto) error {
	return b.save(keyProdutos, produtos)
}

// SaveUsers overwrites the persisted account snapshot.
func (b *Bolt) SaveUsers(users []user.User) error {
	return b.save(keyUsers, users)
}

// LoadProdutos returns the persisted listings. A missing or unparsable
// blob loads as an empty collection.
func (b *Bolt) LoadProdutos() []produto.Produto {
	var produtos []produto.Produto
	b.load(keyProdutos, &produtos)
	return produtos
}

// LoadUsers returns the persisted accounts. A missing or unparsable blob
// loads as an empty collection.
func (b *Bolt) LoadUsers() []user.User {
	var users []user.User
	b.load(keyUsers, &users)
	return users
}

func (b *Bolt) save(key []byte, v interface{}) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, blob)
	})
	return errors.Wrap(err, "writing snapshot")
}

func (b *Bolt) load(key []byte, v interface{}) {
	b.db.View(func(tx *bolt.Tx) error {
		blob := tx.Bucket(bucketName).Get(key)
		if blob == nil {
			return nil
		}
		// A corrupt blob loads as empty, same as unparsable localStorage.
		json.Unmarshal(blob, v)
		return nil
	})
}

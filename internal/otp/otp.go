// Package otp stores short-lived one-time codes for password resets.
// Codes live in a Badger database with a TTL, so expiry needs no sweeper.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	codeDigits = 6
	keyPrefix  = "otp:"
)

// Store persists hashed one-time codes with a TTL.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	secret string
	ttl    time.Duration
}

// Options configures a Store.
type Options struct {
	// Path is the directory for the Badger database.
	Path string
	// Secret is mixed into the stored hash so a copied database alone
	// cannot be brute-forced offline against the 6-digit space.
	Secret string
	// TTL is how long a code stays valid.
	TTL    time.Duration
	Logger *slog.Logger
}

// New opens the one-time code store.
func New(opts Options) (*Store, error) {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}

	badgerOpts := badger.DefaultOptions(opts.Path)
	badgerOpts.Logger = nil      // Disable Badger's internal logging
	badgerOpts.SyncWrites = true // Codes must survive a crash between issue and verify

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &Store{
		db:     db,
		logger: opts.Logger,
		secret: opts.Secret,
		ttl:    opts.TTL,
	}, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Issue generates a fresh 6-digit code for the user and stores its hash.
// Issuing again replaces any outstanding code.
func (s *Store) Issue(userID string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(keyPrefix+userID), []byte(s.hashCode(code))).
			WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}

	return code, nil
}

// Verify checks a code for the user. A correct code is consumed so it
// cannot be replayed; expired or missing codes simply fail.
func (s *Store) Verify(userID, code string) (bool, error) {
	valid := false

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		stored, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		if subtle.ConstantTimeCompare(stored, []byte(s.hashCode(code))) != 1 {
			return nil
		}

		valid = true
		return txn.Delete([]byte(keyPrefix + userID))
	})
	if err != nil {
		return false, fmt.Errorf("verify code: %w", err)
	}

	return valid, nil
}

// Invalidate removes any outstanding code for the user.
func (s *Store) Invalidate(userID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(keyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// hashCode hashes a code together with the server secret.
func (s *Store) hashCode(code string) string {
	sum := sha256.Sum256([]byte(code + s.secret))
	return hex.EncodeToString(sum[:])
}

// generateCode produces a zero-padded 6-digit code from crypto/rand.
func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

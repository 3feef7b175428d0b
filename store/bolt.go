package store

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/sync/errgroup"

	"github.com/briwylde08/dead-mans-draw/groth16"
	"github.com/briwylde08/dead-mans-draw/logger"
	"github.com/briwylde08/dead-mans-draw/match"
)

const (
	matchesBucket = "matches"
	configBucket  = "config"
)

var vkKey = []byte("verifying-key")

// BoltOptions configure OpenBolt. Zero values select the defaults.
type BoltOptions struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// Bolt persists matches and the verifying key in a bbolt database. Expired
// records are invisible to readers immediately and removed by a background
// sweeper.
type Bolt struct {
	db        *bolt.DB
	ttl       time.Duration
	sweepEach time.Duration
	now       func() time.Time
	log       zerolog.Logger

	cancel context.CancelFunc
	eg     *errgroup.Group
}

// OpenBolt opens or creates the database at path and starts the expiry
// sweeper. Callers own the returned store and must Close it.
func OpenBolt(path string, opts BoltOptions) (*Bolt, error) {
	if opts.TTL == 0 {
		opts.TTL = DefaultTTL
	}
	if opts.SweepInterval == 0 {
		opts.SweepInterval = DefaultSweepInterval
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{matchesBucket, configBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("create %s bucket: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Bolt{
		db:        db,
		ttl:       opts.TTL,
		sweepEach: opts.SweepInterval,
		now:       time.Now,
		log:       logger.Logger().With().Str("component", "store").Logger(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.eg, ctx = errgroup.WithContext(ctx)
	s.eg.Go(func() error {
		s.sweep(ctx)
		return nil
	})
	return s, nil
}

// Close stops the sweeper and closes the database.
func (s *Bolt) Close() error {
	s.cancel()
	_ = s.eg.Wait()
	return s.db.Close()
}

func (s *Bolt) GetMatch(_ context.Context, id match.SessionID) (match.Match, bool, error) {
	var (
		rec   record
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(matchesBucket)).Get(sessionKey(id))
		if raw == nil {
			return nil
		}
		if err := decMode.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decode match %d: %w", id, err)
		}
		found = true
		return nil
	})
	if err != nil {
		return match.Match{}, false, err
	}
	if !found || rec.ExpiresAt <= s.now().Unix() {
		return match.Match{}, false, nil
	}
	return rec.Match, true, nil
}

func (s *Bolt) PutMatch(_ context.Context, id match.SessionID, m match.Match) error {
	raw, err := encMode.Marshal(record{
		Match:     m,
		ExpiresAt: s.now().Add(s.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode match %d: %w", id, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(matchesBucket)).Put(sessionKey(id), raw)
	})
}

func (s *Bolt) HasMatch(ctx context.Context, id match.SessionID) (bool, error) {
	_, ok, err := s.GetMatch(ctx, id)
	return ok, err
}

func (s *Bolt) VerifyingKey(context.Context) (*groth16.VerifyingKey, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(configBucket)).Get(vkKey); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if raw == nil {
		return nil, false, nil
	}
	var vk groth16.VerifyingKey
	if _, err := vk.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, false, fmt.Errorf("decode verifying key: %w", err)
	}
	return &vk, true, nil
}

func (s *Bolt) PutVerifyingKey(_ context.Context, vk *groth16.VerifyingKey) error {
	var buf bytes.Buffer
	if _, err := vk.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode verifying key: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(configBucket)).Put(vkKey, buf.Bytes())
	})
}

func (s *Bolt) sweep(ctx context.Context) {
	t := time.NewTicker(s.sweepEach)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.dropExpired()
			if err != nil {
				s.log.Error().Err(err).Msg("expiry sweep failed")
				continue
			}
			if n > 0 {
				s.log.Debug().Int("dropped", n).Msg("expired matches removed")
			}
		}
	}
}

// dropExpired removes every match record whose lease has lapsed. Records
// that fail to decode are left in place so the failure stays observable.
func (s *Bolt) dropExpired() (int, error) {
	now := s.now().Unix()
	dropped := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(matchesBucket))

		var victims [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec record
			if err := decMode.Unmarshal(v, &rec); err != nil {
				continue
			}
			if rec.ExpiresAt <= now {
				victims = append(victims, append([]byte(nil), k...))
			}
		}

		for _, k := range victims {
			if err := b.Delete(k); err != nil {
				return err
			}
			dropped++
		}
		return nil
	})
	return dropped, err
}

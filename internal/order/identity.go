package order

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	DefaultOrderNumberPrefix = "ORD"
	DefaultTimezone          = "Asia/Bangkok"

	sessionPrefix   = "session_"
	sessionEntropy  = 24
	sequenceKeyBase = "order_number:"
)

// Sequencer hands out strictly increasing values per key. Implementations
// must be atomic across processes.
type Sequencer interface {
	Next(ctx context.Context, key string) (int64, error)
}

type IdentityGenerator struct {
	seq    Sequencer
	loc    *time.Location
	prefix string
	now    func() time.Time
}

func NewIdentityGenerator(seq Sequencer, loc *time.Location, prefix string) *IdentityGenerator {
	if loc == nil {
		loc = time.UTC
	}
	if prefix == "" {
		prefix = DefaultOrderNumberPrefix
	}
	return &IdentityGenerator{
		seq:    seq,
		loc:    loc,
		prefix: prefix,
		now:    time.Now,
	}
}

// LoadLocation resolves a timezone name, falling back to DefaultTimezone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// NextOrderNumber returns PREFIX-YYYYMMDD-NNNN where the date is local to the
// generator's timezone and NNNN is that day's sequence value.
func (g *IdentityGenerator) NextOrderNumber(ctx context.Context) (string, error) {
	day := g.now().In(g.loc).Format("20060102")

	n, err := g.seq.Next(ctx, sequenceKeyBase+day)
	if err != nil {
		return "", fmt.Errorf("next order sequence: %w", err)
	}
	if n < 1 {
		return "", fmt.Errorf("sequence returned %d", n)
	}

	return fmt.Sprintf("%s-%s-%04d", g.prefix, day, n), nil
}

// NewSessionID returns an unguessable customer session id.
func (g *IdentityGenerator) NewSessionID() (string, error) {
	b := make([]byte, sessionEntropy)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return sessionPrefix + base64.RawURLEncoding.EncodeToString(b), nil
}

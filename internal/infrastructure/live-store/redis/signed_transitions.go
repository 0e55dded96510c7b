package redislivestore

import (
	"context"
	"time"

	"github.com/ark-network/htlc/internal/core/ports"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	signedTransitionsPrefix = "htlc:signed:"
	// Long enough to answer any redelivered proposal of a session.
	signedTransitionsTTL = 24 * time.Hour
)

type signedTransition struct {
	Signature []byte
}

type signedTransitionsStore struct {
	kv *jsonStore[signedTransition]
}

func NewSignedTransitionsStore(rdb *redis.Client) ports.SignedTransitionsStore {
	return &signedTransitionsStore{
		kv: newJSONStore[signedTransition](rdb, signedTransitionsPrefix, signedTransitionsTTL),
	}
}

func (s *signedTransitionsStore) Add(ctx context.Context, transitionId string, signature []byte) error {
	return s.kv.put(ctx, transitionId, signedTransition{signature})
}

func (s *signedTransitionsStore) Get(ctx context.Context, transitionId string) ([]byte, bool) {
	st, err := s.kv.get(ctx, transitionId)
	if err != nil {
		log.WithError(err).Warnf("failed to get signed transition %s", transitionId)
		return nil, false
	}
	if st == nil {
		return nil, false
	}
	return st.Signature, true
}

func (s *signedTransitionsStore) Delete(ctx context.Context, transitionId string) {
	if err := s.kv.delete(ctx, transitionId); err != nil {
		log.WithError(err).Warnf("failed to delete signed transition %s", transitionId)
	}
}

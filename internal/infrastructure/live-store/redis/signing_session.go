// Redis-backed implementation of signingSessionsStore. Session state lives in
// Redis hashes, completion is detected by goroutines polling that state.

package redislivestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ark-network/htlc/internal/core/ports"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	signingSessMetaKeyFmt      = "signingSess:%s:meta"
	signingSessSigsKeyFmt      = "signingSess:%s:sigs"
	signingSessRejectionKeyFmt = "signingSess:%s:rejection"
)

// sessionReader is satisfied by both *redis.Client and *redis.Tx.
type sessionReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type signingSessionsStore struct {
	rdb          *redis.Client
	numOfRetries int
	pollInterval time.Duration

	lock    sync.Mutex
	doneChs map[string]chan struct{}
	stopChs map[string]chan struct{}
}

func NewSigningSessionsStore(rdb *redis.Client, numOfRetries int) ports.SigningSessionsStore {
	return &signingSessionsStore{
		rdb:          rdb,
		numOfRetries: numOfRetries,
		pollInterval: 50 * time.Millisecond,
		doneChs:      make(map[string]chan struct{}),
		stopChs:      make(map[string]chan struct{}),
	}
}

func (s *signingSessionsStore) New(
	ctx context.Context, sessionId string, payload []byte, signers []string,
) (*ports.SigningSession, error) {
	metaKey := fmt.Sprintf(signingSessMetaKeyFmt, sessionId)

	signersBytes, err := json.Marshal(signers)
	if err != nil {
		return nil, err
	}
	created, err := s.rdb.HSetNX(ctx, metaKey, "Payload", payload).Result()
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("signing session %s already exists", sessionId)
	}
	if err := s.rdb.HSet(ctx, metaKey, "Signers", signersBytes).Err(); err != nil {
		return nil, err
	}

	s.lock.Lock()
	doneCh := make(chan struct{})
	stopCh := make(chan struct{})
	s.doneChs[sessionId] = doneCh
	s.stopChs[sessionId] = stopCh
	s.lock.Unlock()

	go s.watchSessionDone(sessionId, doneCh, stopCh)

	return &ports.SigningSession{
		Id:         sessionId,
		Payload:    payload,
		Signers:    signers,
		Signatures: make(map[string][]byte),
	}, nil
}

func (s *signingSessionsStore) Get(ctx context.Context, sessionId string) (*ports.SigningSession, bool) {
	session, err := s.get(ctx, s.rdb, sessionId)
	if err != nil {
		log.WithError(err).Warnf("failed to get signing session %s", sessionId)
		return nil, false
	}
	return session, session != nil
}

func (s *signingSessionsStore) AddSignature(
	ctx context.Context, sessionId, party string, signature []byte,
) error {
	sigsKey := fmt.Sprintf(signingSessSigsKeyFmt, sessionId)
	rejectionKey := fmt.Sprintf(signingSessRejectionKeyFmt, sessionId)

	return s.withRetries(ctx, func(tx *redis.Tx) error {
		session, err := s.get(ctx, tx, sessionId)
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("signing session %s not found", sessionId)
		}
		if !session.IsSigner(party) {
			return fmt.Errorf("%s is not a signer of session %s", party, sessionId)
		}
		if session.IsDone() {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, sigsKey, party, signature)
			return nil
		})
		return err
	}, sigsKey, rejectionKey)
}

func (s *signingSessionsStore) AddRejection(
	ctx context.Context, sessionId string, rejection ports.Rejection,
) error {
	sigsKey := fmt.Sprintf(signingSessSigsKeyFmt, sessionId)
	rejectionKey := fmt.Sprintf(signingSessRejectionKeyFmt, sessionId)

	buf, err := json.Marshal(rejection)
	if err != nil {
		return err
	}

	return s.withRetries(ctx, func(tx *redis.Tx) error {
		session, err := s.get(ctx, tx, sessionId)
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("signing session %s not found", sessionId)
		}
		if session.IsDone() {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rejectionKey, buf, 0)
			return nil
		})
		return err
	}, sigsKey, rejectionKey)
}

func (s *signingSessionsStore) Done(sessionId string) <-chan struct{} {
	s.lock.Lock()
	defer s.lock.Unlock()

	ch, ok := s.doneChs[sessionId]
	if !ok {
		return make(chan struct{})
	}
	return ch
}

func (s *signingSessionsStore) Delete(ctx context.Context, sessionId string) {
	s.lock.Lock()
	if stopCh, ok := s.stopChs[sessionId]; ok {
		close(stopCh)
	}
	delete(s.stopChs, sessionId)
	delete(s.doneChs, sessionId)
	s.lock.Unlock()

	if err := s.rdb.Del(
		ctx,
		fmt.Sprintf(signingSessMetaKeyFmt, sessionId),
		fmt.Sprintf(signingSessSigsKeyFmt, sessionId),
		fmt.Sprintf(signingSessRejectionKeyFmt, sessionId),
	).Err(); err != nil {
		log.WithError(err).Warnf("failed to delete signing session %s", sessionId)
	}
}

func (s *signingSessionsStore) withRetries(
	ctx context.Context, fn func(tx *redis.Tx) error, keys ...string,
) error {
	for attempt := 0; attempt < s.numOfRetries; attempt++ {
		err := s.rdb.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update failed after %v retries", s.numOfRetries)
}

func (s *signingSessionsStore) watchSessionDone(
	sessionId string, doneCh, stopCh chan struct{},
) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	ctx := context.Background()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			session, err := s.get(ctx, s.rdb, sessionId)
			if err != nil || session == nil {
				continue
			}
			if session.IsDone() {
				close(doneCh)
				return
			}
		}
	}
}

func (s *signingSessionsStore) get(
	ctx context.Context, rdb sessionReader, sessionId string,
) (*ports.SigningSession, error) {
	meta, err := rdb.HGetAll(ctx, fmt.Sprintf(signingSessMetaKeyFmt, sessionId)).Result()
	if err != nil {
		return nil, err
	}
	if len(meta) == 0 {
		return nil, nil
	}

	var signers []string
	if err := json.Unmarshal([]byte(meta["Signers"]), &signers); err != nil {
		return nil, err
	}

	sigsMap, err := rdb.HGetAll(ctx, fmt.Sprintf(signingSessSigsKeyFmt, sessionId)).Result()
	if err != nil {
		return nil, err
	}
	signatures := make(map[string][]byte, len(sigsMap))
	for party, sig := range sigsMap {
		signatures[party] = []byte(sig)
	}

	var rejection *ports.Rejection
	buf, err := rdb.Get(ctx, fmt.Sprintf(signingSessRejectionKeyFmt, sessionId)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	if err == nil {
		rejection = &ports.Rejection{}
		if err := json.Unmarshal([]byte(buf), rejection); err != nil {
			return nil, err
		}
	}

	return &ports.SigningSession{
		Id:         sessionId,
		Payload:    []byte(meta["Payload"]),
		Signers:    signers,
		Signatures: signatures,
		Rejection:  rejection,
	}, nil
}

package schnorridentity

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/core/ports"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// service signs the sha256 digest of transition payloads with BIP-340
// schnorr signatures. Parties are known by their x-only public key.
type service struct {
	partyId string
	privkey *secp256k1.PrivateKey
	parties map[string]*btcec.PublicKey
}

// NewService returns the identity of partyId. Parties maps every known party
// id to its hex encoded public key, either compressed or x-only.
func NewService(
	partyId, privkeyHex string, parties map[string]string,
) (ports.IdentityService, error) {
	if partyId == "" {
		return nil, fmt.Errorf("missing party id")
	}
	privkey, err := ParsePrivateKey(privkeyHex)
	if err != nil {
		return nil, err
	}

	svc := &service{
		partyId: partyId,
		privkey: privkey,
		parties: make(map[string]*btcec.PublicKey, len(parties)+1),
	}
	for party, pubkeyHex := range parties {
		pubkey, err := ParsePublicKey(pubkeyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid public key of party %s: %s", party, err)
		}
		svc.parties[party] = pubkey
	}

	selfPubkey := privkey.PubKey()
	if known, ok := svc.parties[partyId]; ok {
		if !bytes.Equal(schnorr.SerializePubKey(known), schnorr.SerializePubKey(selfPubkey)) {
			return nil, fmt.Errorf("public key of %s does not match private key", partyId)
		}
	}
	svc.parties[partyId] = selfPubkey
	return svc, nil
}

func (s *service) PartyId() string {
	return s.partyId
}

func (s *service) Sign(_ context.Context, payload []byte) ([]byte, error) {
	digest := sha256.Sum256(payload)
	sig, err := schnorr.Sign(s.privkey, digest[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign payload: %s", err)
	}
	return sig.Serialize(), nil
}

func (s *service) Verify(_ context.Context, party string, payload, signature []byte) error {
	pubkey, ok := s.parties[party]
	if !ok {
		return domain.NewError(domain.ErrorKindNotAuthorized, "unknown party %s", party)
	}

	sig, err := schnorr.ParseSignature(signature)
	if err != nil {
		return domain.WrapError(
			domain.ErrorKindEncodingError, err, "invalid signature of %s", party,
		)
	}
	digest := sha256.Sum256(payload)
	if !sig.Verify(digest[:], pubkey) {
		return domain.NewError(
			domain.ErrorKindNotAuthorized, "signature of %s does not verify", party,
		)
	}
	return nil
}

func ParsePrivateKey(privkeyHex string) (*secp256k1.PrivateKey, error) {
	buf, err := hex.DecodeString(privkeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key format: %s", err)
	}
	if len(buf) != secp256k1.PrivKeyBytesLen {
		return nil, fmt.Errorf(
			"invalid private key length, expected %d bytes, got %d",
			secp256k1.PrivKeyBytesLen, len(buf),
		)
	}
	return secp256k1.PrivKeyFromBytes(buf), nil
}

func ParsePublicKey(pubkeyHex string) (*btcec.PublicKey, error) {
	buf, err := hex.DecodeString(pubkeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid public key format: %s", err)
	}
	if len(buf) == schnorr.PubKeyBytesLen {
		return schnorr.ParsePubKey(buf)
	}
	return btcec.ParsePubKey(buf)
}

// GenerateKeyPair returns a new hex encoded private key and its x-only public
// key.
func GenerateKeyPair() (string, string, error) {
	privkey, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(privkey.Serialize()),
		hex.EncodeToString(schnorr.SerializePubKey(privkey.PubKey())), nil
}

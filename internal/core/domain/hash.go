package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

const (
	HashSize             = sha256.Size
	DefaultPreimageSize  = 32
	MinimumPreimageSize  = 16
	hashTagHexCharacters = 8
)

// GenerateHash returns the base64 encoded preimage and its sha256 hash.
// A random preimage is generated if secret is empty.
func GenerateHash(secret []byte) (preimage string, hash string) {
	if len(secret) == 0 {
		secret = make([]byte, DefaultPreimageSize)
		// crypto/rand.Read never returns an error on supported platforms.
		// nolint:errcheck
		rand.Read(secret)
	}
	digest := sha256.Sum256(secret)
	return base64.StdEncoding.EncodeToString(secret),
		base64.StdEncoding.EncodeToString(digest[:])
}

// VerifyHash recomputes the hash of preimage and compares it in constant
// time with expectedHash.
func VerifyHash(preimage, expectedHash []byte) bool {
	if len(expectedHash) != HashSize {
		return false
	}
	digest := sha256.Sum256(preimage)
	return subtle.ConstantTimeCompare(digest[:], expectedHash) == 1
}

func VerifyHashBase64(preimage, expectedHash string) (bool, error) {
	buf, err := PreimageFromBase64(preimage)
	if err != nil {
		return false, err
	}
	hash, err := HashFromBase64(expectedHash)
	if err != nil {
		return false, err
	}
	return VerifyHash(buf, hash), nil
}

func HashFromBase64(hash string) ([]byte, error) {
	buf, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return nil, WrapError(ErrorKindEncodingError, err, "invalid hash encoding")
	}
	if len(buf) != HashSize {
		return nil, NewError(
			ErrorKindEncodingError, "invalid hash length, expected %d got %d", HashSize, len(buf),
		)
	}
	return buf, nil
}

func PreimageFromBase64(preimage string) ([]byte, error) {
	buf, err := base64.StdEncoding.DecodeString(preimage)
	if err != nil {
		return nil, WrapError(ErrorKindEncodingError, err, "invalid preimage encoding")
	}
	return buf, nil
}

func HashToBase64(hash []byte) string {
	return base64.StdEncoding.EncodeToString(hash)
}

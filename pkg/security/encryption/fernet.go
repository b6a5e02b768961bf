package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
	"time"
)

const (
	tokenVersion = 0x80

	versionLen   = 1
	timestampLen = 8
	ivLen        = aes.BlockSize
	macLen       = sha256.Size

	headerLen = versionLen + timestampLen + ivLen

	// Smallest token: header, one cipher block and the HMAC.
	minTokenLen = headerLen + aes.BlockSize + macLen
)

var (
	errInvalidToken = errors.New("invalid token")
	errBadSignature = errors.New("signature mismatch")
	errBadPadding   = errors.New("invalid padding")
)

// randReader is the IV source for randomized tokens.
var randReader io.Reader = rand.Reader

// now returns the token timestamp for randomized tokens.
var now = time.Now

// key is the key material derived from a passphrase.
type key struct {
	raw     [32]byte
	signing []byte
	crypt   []byte
}

// deriveKey hashes the passphrase with SHA-256. The first half of the digest
// signs tokens and the second half encrypts them.
func deriveKey(passphrase string) key {
	k := key{raw: sha256.Sum256([]byte(passphrase))}
	k.signing = k.raw[:16]
	k.crypt = k.raw[16:]
	return k
}

// deterministicIV is fixed for a passphrase.
func (k key) deterministicIV() []byte {
	sum := sha256.Sum256(k.raw[:])
	return sum[:ivLen]
}

// Encrypt encrypts plaintext with a key derived from passphrase and returns a
// URL-safe base64 token.
//
// In randomized mode every call uses a fresh IV and the current time, so two
// encryptions of the same plaintext differ. In deterministic mode the IV is
// derived from the key and the timestamp is zero, so equal plaintext and
// passphrase always produce the same token.
func Encrypt(plaintext []byte, passphrase string, deterministic bool) ([]byte, error) {
	if passphrase == "" {
		return nil, &EncryptionError{Cause: errors.New("encryption key is empty")}
	}

	k := deriveKey(passphrase)

	var (
		iv []byte
		ts uint64
	)
	if deterministic {
		iv = k.deterministicIV()
	} else {
		iv = make([]byte, ivLen)
		if _, err := io.ReadFull(randReader, iv); err != nil {
			return nil, &EncryptionError{Cause: err}
		}
		ts = uint64(now().Unix()) // #nosec G115 - unix time is positive
	}

	return seal(k, plaintext, iv, ts)
}

// EncryptString is Encrypt for string content.
func EncryptString(content, passphrase string, deterministic bool) ([]byte, error) {
	return Encrypt([]byte(content), passphrase, deterministic)
}

func seal(k key, plaintext, iv []byte, ts uint64) ([]byte, error) {
	block, err := aes.NewCipher(k.crypt)
	if err != nil {
		return nil, &EncryptionError{Cause: err}
	}

	padded := pad(plaintext)
	out := make([]byte, headerLen+len(padded), headerLen+len(padded)+macLen)
	out[0] = tokenVersion
	binary.BigEndian.PutUint64(out[versionLen:], ts)
	copy(out[versionLen+timestampLen:], iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[headerLen:], padded)

	mac := hmac.New(sha256.New, k.signing)
	mac.Write(out)
	out = mac.Sum(out)

	encoded := make([]byte, base64.URLEncoding.EncodedLen(len(out)))
	base64.URLEncoding.Encode(encoded, out)
	return encoded, nil
}

// Decrypt verifies and decrypts a token produced by Encrypt in either mode.
// Surrounding whitespace is ignored. A wrong passphrase, a foreign token or a
// corrupted token yields a *DecryptionError.
func Decrypt(token []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, &DecryptionError{Cause: errors.New("encryption key is empty")}
	}

	token = bytes.TrimSpace(token)
	raw := make([]byte, base64.URLEncoding.DecodedLen(len(token)))
	n, err := base64.URLEncoding.Decode(raw, token)
	if err != nil {
		return nil, &DecryptionError{Cause: errInvalidToken}
	}
	raw = raw[:n]

	if len(raw) < minTokenLen || raw[0] != tokenVersion {
		return nil, &DecryptionError{Cause: errInvalidToken}
	}
	if (len(raw)-headerLen-macLen)%aes.BlockSize != 0 {
		return nil, &DecryptionError{Cause: errInvalidToken}
	}

	k := deriveKey(passphrase)

	body, sig := raw[:len(raw)-macLen], raw[len(raw)-macLen:]
	mac := hmac.New(sha256.New, k.signing)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), sig) {
		return nil, &DecryptionError{Cause: errBadSignature}
	}

	block, err := aes.NewCipher(k.crypt)
	if err != nil {
		return nil, &DecryptionError{Cause: err}
	}

	iv := body[versionLen+timestampLen : headerLen]
	plaintext := make([]byte, len(body)-headerLen)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, body[headerLen:])

	plaintext, err = unpad(plaintext)
	if err != nil {
		return nil, &DecryptionError{Cause: err}
	}
	return plaintext, nil
}

// DecryptString is Decrypt returning a string.
func DecryptString(token []byte, passphrase string) (string, error) {
	plaintext, err := Decrypt(token, passphrase)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// pad applies PKCS#7 padding to a whole number of AES blocks.
func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, errBadPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize {
		return nil, errBadPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errBadPadding
		}
	}
	return data[:len(data)-n], nil
}

package strongbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// cipherSpec holds the concrete parameters a CipherID resolves to.
type cipherSpec struct {
	id      CipherID
	tag     byte // wire tag embedded in tokens
	keySize int  // key length in bytes
	ivSize  int  // IV/nonce length in bytes
	macSize int  // trailing MAC length; 0 for AEAD modes
	aead    bool
}

// Wire tags are part of the token format; never reuse or renumber them.
var cipherSpecs = map[CipherID]cipherSpec{
	AES128CBC:        {id: AES128CBC, tag: 0x01, keySize: 16, ivSize: aes.BlockSize, macSize: sha256.Size},
	AES192CBC:        {id: AES192CBC, tag: 0x02, keySize: 24, ivSize: aes.BlockSize, macSize: sha256.Size},
	AES256CBC:        {id: AES256CBC, tag: 0x03, keySize: 32, ivSize: aes.BlockSize, macSize: sha256.Size},
	AES128GCM:        {id: AES128GCM, tag: 0x04, keySize: 16, ivSize: 12, aead: true},
	AES256GCM:        {id: AES256GCM, tag: 0x05, keySize: 32, ivSize: 12, aead: true},
	ChaCha20Poly1305: {id: ChaCha20Poly1305, tag: 0x06, keySize: chacha20poly1305.KeySize, ivSize: chacha20poly1305.NonceSize, aead: true},
}

// resolveCipher maps a cipher identifier to its parameters.
func resolveCipher(id CipherID) (cipherSpec, error) {
	spec, ok := cipherSpecs[id]
	if !ok {
		return cipherSpec{}, newConfigError(ErrUnknownCipher, string(id))
	}
	return spec, nil
}

// cipherByTag maps a token wire tag back to its parameters.
func cipherByTag(tag byte) (cipherSpec, bool) {
	for _, spec := range cipherSpecs {
		if spec.tag == tag {
			return spec, true
		}
	}
	return cipherSpec{}, false
}

// engine performs symmetric encryption for one resolved cipher.
// Engines are stateless; the key is supplied per call.
type engine struct {
	spec cipherSpec
}

// newEngine resolves id and returns an engine for it. Fails with a
// ConfigError on an unknown identifier, before any key material is touched.
func newEngine(id CipherID) (*engine, error) {
	spec, err := resolveCipher(id)
	if err != nil {
		return nil, err
	}
	return &engine{spec: spec}, nil
}

// encrypt seals plaintext under key with a fresh random IV. For AEAD modes
// the authentication tag is part of ciphertext and mac is nil; for CBC modes
// mac is an HMAC-SHA256 over iv||ciphertext.
func (e *engine) encrypt(key, plaintext []byte) (iv, ciphertext, mac []byte, err error) {
	if len(key) != e.spec.keySize {
		return nil, nil, nil, newConfigError(ErrInvalidKeySize,
			string(e.spec.id))
	}

	iv = make([]byte, e.spec.ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, nil, err
	}

	if e.spec.aead {
		aead, err := e.newAEAD(key)
		if err != nil {
			return nil, nil, nil, err
		}
		return iv, aead.Seal(nil, iv, plaintext, nil), nil, nil
	}

	encKey, macKey, err := splitKey(key)
	if err != nil {
		return nil, nil, nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, nil, nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	h := hmac.New(sha256.New, macKey)
	h.Write(iv)
	h.Write(ciphertext)
	return iv, ciphertext, h.Sum(nil), nil
}

// decrypt reverses encrypt. Every failure surfaces as the opaque
// ErrDecryptionFailed, regardless of which check tripped.
func (e *engine) decrypt(key, iv, ciphertext, mac []byte) ([]byte, error) {
	if len(key) != e.spec.keySize || len(iv) != e.spec.ivSize {
		return nil, ErrDecryptionFailed
	}

	if e.spec.aead {
		aead, err := e.newAEAD(key)
		if err != nil {
			return nil, ErrDecryptionFailed
		}
		plaintext, err := aead.Open(nil, iv, ciphertext, nil)
		if err != nil {
			return nil, ErrDecryptionFailed
		}
		return plaintext, nil
	}

	if len(mac) != e.spec.macSize || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrDecryptionFailed
	}

	encKey, macKey, err := splitKey(key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	h := hmac.New(sha256.New, macKey)
	h.Write(iv)
	h.Write(ciphertext)
	if !hmac.Equal(mac, h.Sum(nil)) {
		return nil, ErrDecryptionFailed
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, ok := pkcs7Unpad(padded, aes.BlockSize)
	if !ok {
		// Unreachable for honestly produced tokens: the MAC already
		// verified. Kept so a MAC-forging bug still fails closed.
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// newAEAD builds the AEAD primitive for this engine's spec.
func (e *engine) newAEAD(key []byte) (cipher.AEAD, error) {
	if e.spec.id == ChaCha20Poly1305 {
		return chacha20poly1305.New(key)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// splitKey expands the caller's key into independent cipher and MAC subkeys
// so CBC tokens can be authenticated without the caller managing two keys.
// Deterministic for a given key.
func splitKey(key []byte) (encKey, macKey []byte, err error) {
	r := hkdf.New(sha256.New, key, nil, []byte("strongbox/cbc-subkeys"))
	encKey = make([]byte, len(key))
	macKey = make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, encKey); err != nil {
		return nil, nil, err
	}
	if _, err := io.ReadFull(r, macKey); err != nil {
		return nil, nil, err
	}
	return encKey, macKey, nil
}

// pkcs7Pad appends PKCS#7 padding up to blockSize. Always adds at least one
// byte, so the result length is a non-zero multiple of blockSize.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// pkcs7Unpad strips PKCS#7 padding, reporting whether it was well formed.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}

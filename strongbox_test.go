package strongbox_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/zoobzio/strongbox"
	"github.com/zoobzio/strongbox/json"
	"github.com/zoobzio/strongbox/msgpack"
)

type Record struct {
	ID     int               `msgpack:"id" json:"id"`
	Name   string            `msgpack:"name" json:"name"`
	Labels map[string]string `msgpack:"labels" json:"labels"`
	Scores []float64         `msgpack:"scores" json:"scores"`
}

func testRecord() Record {
	return Record{
		ID:     42,
		Name:   "alice",
		Labels: map[string]string{"env": "prod", "team": "core"},
		Scores: []float64{0.25, 99.5},
	}
}

func newBox(t *testing.T, opts ...strongbox.Option) *strongbox.Strongbox {
	t.Helper()
	box, err := strongbox.New(msgpack.New(), opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return box
}

func TestRoundTripWithKey(t *testing.T) {
	ctx := context.Background()

	ciphers := []strongbox.CipherID{
		strongbox.AES128CBC,
		strongbox.AES192CBC,
		strongbox.AES256CBC,
		strongbox.AES128GCM,
		strongbox.AES256GCM,
		strongbox.ChaCha20Poly1305,
	}

	for _, id := range ciphers {
		t.Run(string(id), func(t *testing.T) {
			box := newBox(t, strongbox.WithDataCipher(id))
			key, err := box.GenerateKey()
			if err != nil {
				t.Fatalf("GenerateKey() error: %v", err)
			}

			token, err := box.EncryptWithKey(ctx, testRecord(), key)
			if err != nil {
				t.Fatalf("EncryptWithKey() error: %v", err)
			}

			var out Record
			if err := box.DecryptWithKey(ctx, token, key, &out); err != nil {
				t.Fatalf("DecryptWithKey() error: %v", err)
			}
			if !reflect.DeepEqual(out, testRecord()) {
				t.Errorf("round-trip failed: got %+v, want %+v", out, testRecord())
			}
		})
	}
}

func TestRoundTripWithPassword(t *testing.T) {
	ctx := context.Background()
	box := newBox(t)

	token, err := box.EncryptWithPassword(ctx, testRecord(), "correct-horse")
	if err != nil {
		t.Fatalf("EncryptWithPassword() error: %v", err)
	}

	var out Record
	if err := box.DecryptWithPassword(ctx, token, "correct-horse", &out); err != nil {
		t.Fatalf("DecryptWithPassword() error: %v", err)
	}
	if !reflect.DeepEqual(out, testRecord()) {
		t.Errorf("round-trip failed: got %+v, want %+v", out, testRecord())
	}
}

func TestWrongKeyFailsClosed(t *testing.T) {
	ctx := context.Background()
	box := newBox(t)

	k1, _ := box.GenerateKey()
	k2, _ := box.GenerateKey()

	token, err := box.EncryptWithKey(ctx, testRecord(), k1)
	if err != nil {
		t.Fatalf("EncryptWithKey() error: %v", err)
	}

	var out Record
	if err := box.DecryptWithKey(ctx, token, k2, &out); !errors.Is(err, strongbox.ErrDecryptionFailed) {
		t.Errorf("DecryptWithKey() with wrong key = %v, want ErrDecryptionFailed", err)
	}
}

func TestWrongPasswordFailsClosed(t *testing.T) {
	ctx := context.Background()
	box := newBox(t)

	token, _ := box.EncryptWithPassword(ctx, testRecord(), "correct-horse")

	var out Record
	if err := box.DecryptWithPassword(ctx, token, "Correct-horse", &out); !errors.Is(err, strongbox.ErrDecryptionFailed) {
		t.Errorf("DecryptWithPassword() with wrong case = %v, want ErrDecryptionFailed", err)
	}
}

func TestTamperDetection(t *testing.T) {
	ctx := context.Background()
	box := newBox(t)
	key, _ := box.GenerateKey()

	token, err := box.EncryptWithKey(ctx, testRecord(), key)
	if err != nil {
		t.Fatalf("EncryptWithKey() error: %v", err)
	}

	// Tokens are documented as unpadded base64url.
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("decoding test token: %v", err)
	}

	// Flip every byte of the cryptographic body (iv, ciphertext, mac).
	// Each single-byte change must fail decryption, never decode.
	for i := 3; i < len(raw); i++ {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		var out Record
		err := box.DecryptWithKey(ctx, base64.RawURLEncoding.EncodeToString(tampered), key, &out)
		if !errors.Is(err, strongbox.ErrDecryptionFailed) {
			t.Fatalf("flipping byte %d: error = %v, want ErrDecryptionFailed", i, err)
		}
	}
}

func TestCompressionTransparency(t *testing.T) {
	ctx := context.Background()
	on := newBox(t, strongbox.WithCompression(true))
	off := newBox(t, strongbox.WithCompression(false))

	key, _ := on.GenerateKey()

	tokenOn, err := on.EncryptWithKey(ctx, testRecord(), key)
	if err != nil {
		t.Fatalf("EncryptWithKey() error: %v", err)
	}
	tokenOff, err := off.EncryptWithKey(ctx, testRecord(), key)
	if err != nil {
		t.Fatalf("EncryptWithKey() error: %v", err)
	}

	if tokenOn == tokenOff {
		t.Error("tokens from different compression settings should differ")
	}

	// Each consumer honors the token's embedded flag, not its own settings.
	var a, b Record
	if err := off.DecryptWithKey(ctx, tokenOn, key, &a); err != nil {
		t.Fatalf("compression-off box decoding compressed token: %v", err)
	}
	if err := on.DecryptWithKey(ctx, tokenOff, key, &b); err != nil {
		t.Fatalf("compression-on box decoding plain token: %v", err)
	}
	if !reflect.DeepEqual(a, testRecord()) || !reflect.DeepEqual(b, testRecord()) {
		t.Error("both tokens should decode to the original value")
	}
}

func TestCompressionShrinksRepetitivePayload(t *testing.T) {
	ctx := context.Background()
	on := newBox(t, strongbox.WithCompression(true))
	off := newBox(t, strongbox.WithCompression(false))

	key, _ := on.GenerateKey()
	payload := strings.Repeat("x", 10000)

	tokenOn, _ := on.EncryptWithKey(ctx, payload, key)
	tokenOff, _ := off.EncryptWithKey(ctx, payload, key)

	if len(tokenOn) >= len(tokenOff)/2 {
		t.Errorf("compressed token %d bytes, uncompressed %d; expected a large saving",
			len(tokenOn), len(tokenOff))
	}
}

func TestCrossCipherDecode(t *testing.T) {
	ctx := context.Background()

	// Tokens are self-describing: a box configured for CBC decodes a token
	// written by a box configured for GCM.
	gcm := newBox(t, strongbox.WithDataCipher(strongbox.AES256GCM))
	cbc := newBox(t, strongbox.WithDataCipher(strongbox.AES256CBC))

	key, _ := gcm.GenerateKey()
	token, err := gcm.EncryptWithKey(ctx, testRecord(), key)
	if err != nil {
		t.Fatalf("EncryptWithKey() error: %v", err)
	}

	var out Record
	if err := cbc.DecryptWithKey(ctx, token, key, &out); err != nil {
		t.Fatalf("DecryptWithKey() error: %v", err)
	}
	if !reflect.DeepEqual(out, testRecord()) {
		t.Error("cross-configured decode should recover the original value")
	}
}

func TestConcreteScenario(t *testing.T) {
	ctx := context.Background()

	// JSON codec, 32 zero bytes as the AES-256-CBC key.
	box, err := strongbox.New(json.New(), strongbox.WithCompression(false))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	key := make([]byte, 32)

	value := map[string]any{"id": 42, "name": "alice"}

	token, err := box.EncryptWithKey(ctx, value, key)
	if err != nil {
		t.Fatalf("EncryptWithKey() error: %v", err)
	}

	var out map[string]any
	if err := box.DecryptWithKey(ctx, token, key, &out); err != nil {
		t.Fatalf("DecryptWithKey() error: %v", err)
	}

	// JSON decodes numbers in untyped maps as float64.
	want := map[string]any{"id": float64(42), "name": "alice"}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("got %+v, want %+v", out, want)
	}
}

func TestMarshalFailureEmitsNoToken(t *testing.T) {
	ctx := context.Background()

	box, err := strongbox.New(json.New())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	key := make([]byte, 32)

	// Channels are not serializable.
	token, err := box.EncryptWithKey(ctx, make(chan int), key)
	if !errors.Is(err, strongbox.ErrMarshal) {
		t.Errorf("EncryptWithKey() error = %v, want ErrMarshal", err)
	}
	if token != "" {
		t.Error("no token should be emitted on a marshal failure")
	}
}

func TestUnmarshalFailure(t *testing.T) {
	ctx := context.Background()
	box := newBox(t)
	key, _ := box.GenerateKey()

	token, _ := box.EncryptWithKey(ctx, testRecord(), key)

	// The payload decrypts fine but cannot decode into an int.
	var out int
	if err := box.DecryptWithKey(ctx, token, key, &out); !errors.Is(err, strongbox.ErrUnmarshal) {
		t.Errorf("DecryptWithKey() error = %v, want ErrUnmarshal", err)
	}
}

func TestNew_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		opts []strongbox.Option
		want error
	}{
		{
			name: "unknown data cipher",
			opts: []strongbox.Option{strongbox.WithDataCipher("AES-512-XTS")},
			want: strongbox.ErrUnknownCipher,
		},
		{
			name: "unknown password cipher",
			opts: []strongbox.Option{strongbox.WithPasswordCipher("ROT13")},
			want: strongbox.ErrUnknownCipher,
		},
		{
			name: "compression level too high",
			opts: []strongbox.Option{strongbox.WithCompressionLevel(10)},
			want: strongbox.ErrInvalidCompressionLevel,
		},
		{
			name: "negative compression level",
			opts: []strongbox.Option{strongbox.WithCompressionLevel(-1)},
			want: strongbox.ErrInvalidCompressionLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := strongbox.New(msgpack.New(), tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEmptyPassword(t *testing.T) {
	ctx := context.Background()
	box := newBox(t)

	if _, err := box.EncryptWithPassword(ctx, testRecord(), ""); !errors.Is(err, strongbox.ErrEmptyPassword) {
		t.Errorf("EncryptWithPassword(\"\") error = %v, want ErrEmptyPassword", err)
	}
}

func TestKeyExportImport(t *testing.T) {
	box := newBox(t)
	key, _ := box.GenerateKey()

	token, err := box.ExportKey(key, "backup-phrase")
	if err != nil {
		t.Fatalf("ExportKey() error: %v", err)
	}

	restored, err := box.ImportKey(token, "backup-phrase")
	if err != nil {
		t.Fatalf("ImportKey() error: %v", err)
	}
	if !bytes.Equal(restored, key) {
		t.Error("exported key should import byte-identically")
	}

	if _, err := box.ImportKey(token, "wrong-phrase"); !errors.Is(err, strongbox.ErrDecryptionFailed) {
		t.Errorf("ImportKey() with wrong password = %v, want ErrDecryptionFailed", err)
	}
}

type Account struct {
	strongbox.Crypto
	Email string
}

func TestCryptoEmbedding(t *testing.T) {
	ctx := context.Background()
	box := newBox(t)

	acct := Account{Crypto: strongbox.BindFor[Account](box), Email: "alice@example.com"}

	token, err := acct.Encrypt(ctx, acct.Email)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	var email string
	if err := acct.Decrypt(ctx, token, &email); err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if email != acct.Email {
		t.Errorf("round-trip failed: got %q, want %q", email, acct.Email)
	}
}

func TestCryptoKeyCaching(t *testing.T) {
	box := newBox(t)
	c := strongbox.BindFor[Account](box)

	k1, err := c.Key()
	if err != nil {
		t.Fatalf("Key() error: %v", err)
	}
	k2, _ := c.Key()
	if !bytes.Equal(k1, k2) {
		t.Error("Key() should return the identical cached key")
	}

	// The same type identity shares one slot across Crypto values.
	other := strongbox.BindFor[Account](box)
	k3, _ := other.Key()
	if !bytes.Equal(k1, k3) {
		t.Error("same type identity should share one cached key")
	}

	replacement := bytes.Repeat([]byte{0x09}, 32)
	c.SetKey(replacement)
	k4, _ := c.Key()
	if !bytes.Equal(k4, replacement) {
		t.Error("SetKey() should change subsequent reads")
	}
}

func TestEncryptableInterface(t *testing.T) {
	// Crypto must satisfy the capability interface host types rely on.
	var _ strongbox.Encryptable = strongbox.Crypto{}
}

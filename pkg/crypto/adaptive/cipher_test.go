package adaptive

import (
	"bytes"
	"testing"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, KeySize)
}

func TestNewWithType_RoundTrip(t *testing.T) {
	for _, typ := range []CipherType{CipherAESGCM, CipherChaCha20} {
		t.Run(string(typ), func(t *testing.T) {
			c, err := NewWithType(testKey(), typ)
			if err != nil {
				t.Fatalf("NewWithType() error = %v", err)
			}
			if c.Type() != typ {
				t.Errorf("Type() = %s, want %s", c.Type(), typ)
			}

			plaintext := []byte(`{"address":"0xabc","chain_id":137}`)
			aad := []byte("wallet/session")

			sealed, err := c.Encrypt(plaintext, aad)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			opened, err := c.Decrypt(sealed, aad)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(opened, plaintext) {
				t.Errorf("Decrypt() = %q, want %q", opened, plaintext)
			}
		})
	}
}

func TestDecrypt_WrongAdditionalData(t *testing.T) {
	c, _ := NewWithType(testKey(), CipherChaCha20)
	sealed, _ := c.Encrypt([]byte("payload"), []byte("marker/wallet-connect"))

	if _, err := c.Decrypt(sealed, []byte("marker/external-payment")); err == nil {
		t.Error("Decrypt() with different additional data should fail")
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	c, _ := NewWithType(testKey(), CipherAESGCM)
	sealed, _ := c.Encrypt([]byte("payload"), nil)
	sealed[len(sealed)-1] ^= 0xff

	if _, err := c.Decrypt(sealed, nil); err == nil {
		t.Error("Decrypt() of tampered ciphertext should fail")
	}
}

func TestDecrypt_TooShort(t *testing.T) {
	c, _ := NewWithType(testKey(), CipherAESGCM)
	if _, err := c.Decrypt([]byte{1, 2, 3}, nil); err != ErrCiphertextTooShort {
		t.Errorf("Decrypt() error = %v, want ErrCiphertextTooShort", err)
	}
}

func TestNewWithType_Invalid(t *testing.T) {
	if _, err := NewWithType([]byte("short"), CipherAESGCM); err == nil {
		t.Error("NewWithType() should reject short keys")
	}
	if _, err := NewWithType(testKey(), CipherType("rot13")); err == nil {
		t.Error("NewWithType() should reject unknown types")
	}
}

func TestEncrypt_Uniqueness(t *testing.T) {
	c, _ := New(testKey())
	a, _ := c.Encrypt([]byte("same"), nil)
	b, _ := c.Encrypt([]byte("same"), nil)
	if bytes.Equal(a, b) {
		t.Error("Encrypt() should use a fresh nonce per call")
	}
}

func TestDeriveKey(t *testing.T) {
	k1, err := DeriveKey([]byte("secret"), []byte("handoff/store"))
	if err != nil {
		t.Fatal(err)
	}
	k2, _ := DeriveKey([]byte("secret"), []byte("handoff/store"))
	k3, _ := DeriveKey([]byte("secret"), []byte("other"))

	if len(k1) != KeySize {
		t.Errorf("len = %d, want %d", len(k1), KeySize)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("DeriveKey() should be deterministic")
	}
	if bytes.Equal(k1, k3) {
		t.Error("DeriveKey() should depend on info")
	}
	if _, err := DeriveKey(nil, nil); err == nil {
		t.Error("DeriveKey() should reject an empty secret")
	}
}

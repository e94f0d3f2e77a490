// Package adaptive provides authenticated encryption for values at rest.
//
// New picks AES-256-GCM on platforms with hardware AES and
// ChaCha20-Poly1305 elsewhere. DeriveKey stretches a configured secret
// into a 32-byte key with HKDF-SHA256.
//
//	key, _ := adaptive.DeriveKey([]byte(secret), []byte("handoff/store"))
//	c, _ := adaptive.New(key)
//	sealed, _ := c.Encrypt(plaintext, []byte("marker/wallet-connect"))
package adaptive

package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// Keypair is a single-use ed25519 signing identity. The private material
// never leaves this struct except through Sign; callers must Zero it once
// the keypair is retired.
type Keypair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// NewKeypair generates a fresh keypair from crypto/rand.
func NewKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate keypair")
	}

	return &Keypair{pub: pub, priv: priv}, nil
}

// KeypairFromSecret restores a keypair from its 64-byte secret (seed ||
// public key), the ledger's native secret-key layout.
func KeypairFromSecret(secret []byte) (*Keypair, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("invalid secret key length: %d", len(secret))
	}

	priv := ed25519.PrivateKey(append([]byte(nil), secret...))

	return &Keypair{
		pub:  priv.Public().(ed25519.PublicKey),
		priv: priv,
	}, nil
}

// Address returns the base58 form of the public key.
func (k *Keypair) Address() string {
	return base58.Encode(k.pub)
}

// PublicKey returns the raw 32-byte public key.
func (k *Keypair) PublicKey() ed25519.PublicKey {
	return k.pub
}

// Sign signs msg with the private key.
func (k *Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

// Clone returns an independent copy. Zeroing one copy leaves the other
// usable, so an owner handing out a keypair can retire its copy without
// destroying material a caller is still signing with.
func (k *Keypair) Clone() *Keypair {
	return &Keypair{
		pub:  append(ed25519.PublicKey(nil), k.pub...),
		priv: append(ed25519.PrivateKey(nil), k.priv...),
	}
}

// Zero overwrites the private material in place. The keypair must not be
// used for signing afterwards.
func (k *Keypair) Zero() {
	for i := range k.priv {
		k.priv[i] = 0
	}
}

type keypairJSON struct {
	Secret string `json:"secret"`
}

// MarshalJSON serializes the full secret key (base58). Only the session
// store may persist a keypair, and only into the configured session backend.
func (k *Keypair) MarshalJSON() ([]byte, error) {
	return json.Marshal(keypairJSON{Secret: base58.Encode(k.priv)})
}

func (k *Keypair) UnmarshalJSON(data []byte) error {
	var raw keypairJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to unmarshal keypair")
	}

	secret, err := base58.Decode(raw.Secret)
	if err != nil {
		return errors.Wrap(err, "failed to decode keypair secret")
	}

	restored, err := KeypairFromSecret(secret)
	if err != nil {
		return err
	}

	*k = *restored

	return nil
}

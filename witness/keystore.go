// Copyright 2026 The bears Authors
// This file is part of the bears library.
//
// The bears library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The bears library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the bears library. If not, see <http://www.gnu.org/licenses/>.

package witness

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"

	"github.com/bearshares/bears/witness/internal/wif"
)

// PrivateKey wraps the secp256k1 signing key handed to GenerateBlock.
type PrivateKey struct {
	inner *btcec.PrivateKey
}

// PublicKeyString returns the compressed public key this private key
// corresponds to, hex-encoded — the identifier used throughout authority
// lists and the key ring.
func (p PrivateKey) PublicKeyString() string {
	return wif.PublicKeyString(p.inner)
}

// KeyStore holds the producer set a node controls and the mapping from
// public key to private key needed to sign for them. It is immutable after
// NewKeyStore returns.
type KeyStore struct {
	producers map[string]struct{}
	ring      map[string]PrivateKey // public key string -> private key
}

// NewKeyStore parses the configured WIF private keys and pairs them with the
// configured producer set. A parse failure is a fatal startup error.
func NewKeyStore(producers []string, wifKeys []string) (*KeyStore, error) {
	ks := &KeyStore{
		producers: make(map[string]struct{}, len(producers)),
		ring:      make(map[string]PrivateKey, len(wifKeys)),
	}
	for _, p := range producers {
		ks.producers[p] = struct{}{}
	}
	for _, w := range wifKeys {
		priv, err := wif.Decode(w)
		if err != nil {
			return nil, errors.Wrapf(err, "witness: invalid private key in configuration")
		}
		pk := PrivateKey{inner: priv}
		ks.ring[pk.PublicKeyString()] = pk
	}
	return ks, nil
}

// Producers reports whether name is one of the producers this node controls.
func (ks *KeyStore) Producers(name string) bool {
	_, ok := ks.producers[name]
	return ok
}

// ProducerConfigured reports whether at least one producer is configured;
// the production loop is only started when this is true.
func (ks *KeyStore) ProducerConfigured() bool {
	return len(ks.producers) > 0
}

// SigningKey returns the private key for pub, if the key ring holds one.
func (ks *KeyStore) SigningKey(pub string) (PrivateKey, bool) {
	k, ok := ks.ring[pub]
	return k, ok
}

// Contains reports whether pub is a key this node holds the private half of.
func (ks *KeyStore) Contains(pub string) bool {
	_, ok := ks.ring[pub]
	return ok
}

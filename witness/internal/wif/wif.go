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

// Package wif implements the well-known WIF (Wallet Import Format) textual
// encoding for secp256k1 private keys used by the key store and by the
// memo-key-leak policy check.
package wif

import (
	"crypto/sha256"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcutil/base58"
)

// version is the address-version byte prefixed to every encoded key. It has
// no consensus meaning here beyond round-tripping our own encode/decode pair.
const version = 0x80

// ErrChecksum is returned when a WIF string's checksum does not match its
// payload.
var ErrChecksum = errors.New("wif: invalid checksum")

// ErrMalformed is returned when a decoded WIF string has the wrong length or
// version byte.
var ErrMalformed = errors.New("wif: malformed key")

func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:4]
}

// Encode renders priv as a base58check WIF string, always in compressed
// form (a trailing 0x01 suffix byte before the checksum).
func Encode(priv *btcec.PrivateKey) string {
	raw := priv.Serialize()
	payload := make([]byte, 0, 1+len(raw)+1)
	payload = append(payload, version)
	payload = append(payload, raw...)
	payload = append(payload, 0x01)
	sum := checksum(payload)
	return base58.Encode(append(payload, sum...))
}

// Decode parses a base58check WIF string into a secp256k1 private key.
func Decode(s string) (*btcec.PrivateKey, error) {
	decoded := base58.Decode(s)
	if len(decoded) < 1+32+4 {
		return nil, ErrMalformed
	}
	payload := decoded[:len(decoded)-4]
	sum := decoded[len(decoded)-4:]
	want := checksum(payload)
	for i := range want {
		if want[i] != sum[i] {
			return nil, ErrChecksum
		}
	}
	if payload[0] != version {
		return nil, ErrMalformed
	}
	key := payload[1:]
	if len(key) == 33 && key[32] == 0x01 {
		key = key[:32]
	}
	if len(key) != 32 {
		return nil, ErrMalformed
	}
	priv, _ := btcec.PrivKeyFromBytes(key)
	return priv, nil
}

// PublicKeyString renders a compressed public key as a hex string; this is
// the PublicKey identifier used throughout the key ring and authority lists.
func PublicKeyString(priv *btcec.PrivateKey) string {
	return hexEncode(priv.PubKey().SerializeCompressed())
}

func hexEncode(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0x0f]
	}
	return string(out)
}

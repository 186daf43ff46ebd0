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

package wif

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	s := Encode(priv)
	got, err := Decode(s)
	require.NoError(t, err)
	require.Equal(t, priv.Serialize(), got.Serialize())
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode("not-a-wif-key")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeBadChecksum(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	s := Encode(priv)

	// flip the last character to break the checksum without changing length
	mutated := []byte(s)
	if mutated[len(mutated)-1] == 'a' {
		mutated[len(mutated)-1] = 'b'
	} else {
		mutated[len(mutated)-1] = 'a'
	}

	_, err = Decode(string(mutated))
	require.Error(t, err)
}

func TestPublicKeyStringDeterministic(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	require.Equal(t, PublicKeyString(priv), PublicKeyString(priv))
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/binon/lib/codec"
)

// Fingerprint is a 32-byte BLAKE3 digest identifying a set of schemas.
// Two registries with the same fingerprint encode and decode every
// record identically, so peers exchanging binon buffers can compare
// fingerprints before trusting each other's bytes.
type Fingerprint [32]byte

// String returns the hex encoding of the fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// fingerprintDomainKey is the BLAKE3 key for registry fingerprints:
// the ASCII domain name zero-padded to 32 bytes. Changing it changes
// every fingerprint.
var fingerprintDomainKey = [32]byte{
	'b', 'i', 'n', 'o', 'n', '.', 's', 'c', 'h', 'e', 'm', 'a', '.',
	'r', 'e', 'g', 'i', 's', 't', 'r', 'y',
}

// Fingerprint hashes the canonical form of the registry: its
// definitions ordered by type code with field types in canonical
// spelling, encoded as deterministic CBOR. Source paths, comments, and
// formatting of the definition files do not contribute.
func (r *Registry) Fingerprint() (Fingerprint, error) {
	canonical, err := codec.Marshal(r.Definitions())
	if err != nil {
		return Fingerprint{}, fmt.Errorf("encoding registry definitions: %w", err)
	}

	hasher, err := blake3.NewKeyed(fingerprintDomainKey[:])
	if err != nil {
		return Fingerprint{}, fmt.Errorf("initializing BLAKE3: %w", err)
	}
	hasher.Write(canonical)

	var fingerprint Fingerprint
	copy(fingerprint[:], hasher.Sum(nil))
	return fingerprint, nil
}

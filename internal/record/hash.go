package record

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainProfileSnapshot = "daleel/profile/v1"
	DomainSourceArchive   = "daleel/source-archive/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotHash computes the content hash of a profile snapshot payload.
func SnapshotHash(canonical []byte) string {
	return hashWithDomain(DomainProfileSnapshot, canonical)
}

// SourceFingerprint computes the archival fingerprint of a Source: a CIDv1
// (raw codec, sha2-256) over the canonical JSON of the four archive fields
// plus the domain tag. The fields it covers are exactly the ones the guard
// freezes, so the stored fingerprint stays valid for the life of the row.
func SourceFingerprint(s Source) (string, error) {
	payload, err := MarshalCanonical(map[string]any{
		"domain":        DomainSourceArchive,
		"originUrl":     s.OriginURL,
		"archivedUrl":   s.ArchivedURL,
		"archivedAt":    s.ArchivedAt,
		"archiveMethod": string(s.ArchiveMethod),
	})
	if err != nil {
		return "", fmt.Errorf("SourceFingerprint: failed to marshal: %w", err)
	}

	sum, err := multihash.Sum(payload, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("SourceFingerprint: %w", err)
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

// VerifySourceFingerprint recomputes the fingerprint of s and compares it
// with the stored one.
func VerifySourceFingerprint(s Source) (bool, error) {
	stored, err := cid.Decode(s.Fingerprint)
	if err != nil {
		return false, fmt.Errorf("decode fingerprint: %w", err)
	}
	want, err := SourceFingerprint(s)
	if err != nil {
		return false, err
	}
	return stored.String() == want, nil
}

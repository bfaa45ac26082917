package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainResult  = "holdjudge/result/v1"
	DomainTrace   = "holdjudge/trace/v1"
	DomainBeatmap = "holdjudge/beatmap/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ResultID computes the content-addressed ID of a judgement result within a session.
// Two replays of the same input produce the same IDs.
func ResultID(sessionID string, r JudgementResult) (string, error) {
	obj := r.ToIR()
	delete(obj, "id")
	obj["session_id"] = IRString(sessionID)

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ResultID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// TraceHash hashes a canonical trace. Equal hashes mean identical judgement streams.
func TraceHash(trace IRArray) (string, error) {
	canonical, err := MarshalCanonical(trace)
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}

// BeatmapHash hashes a canonical beatmap description.
func BeatmapHash(desc IRObject) (string, error) {
	canonical, err := MarshalCanonical(desc)
	if err != nil {
		return "", fmt.Errorf("BeatmapHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBeatmap, canonical), nil
}

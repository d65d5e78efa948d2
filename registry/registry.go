package registry

// Package registry records proof provenance after a successful run: the proof
// hash and the committed score go into the subject's metadata.json, plus an
// address-keyed copy downstream services can look up without touching subject
// directories.

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"

	"github.com/santhoshcheemala/zkcredit/artifacts"
	"github.com/santhoshcheemala/zkcredit/lib"
	"github.com/santhoshcheemala/zkcredit/score"
	"github.com/santhoshcheemala/zkcredit/subject"
)

// Write builds and persists the metadata entry for one subject's proof. The
// scaled score is extracted best-effort; a proof with an unreadable witness
// still gets a registry entry, just without the committed score.
func Write(store *artifacts.Store, in subject.Input, scale float64, log zerolog.Logger) (score.Metadata, error) {
	proofPath, err := store.Resolve(artifacts.Subject, artifacts.Proof, in.Address)
	if err != nil {
		return score.Metadata{}, err
	}
	proofBytes, err := os.ReadFile(proofPath)
	if err != nil {
		return score.Metadata{}, fmt.Errorf("read proof: %w", err)
	}

	md := score.Metadata{
		ProofHash:    hex.EncodeToString(crypto.Keccak256(proofBytes)),
		Score:        in.Score,
		Timestamp:    time.Now().Unix(),
		ModelVersion: lib.ModelVersion,
	}

	witnessPath, err := store.Resolve(artifacts.Subject, artifacts.Witness, in.Address)
	if err != nil {
		return score.Metadata{}, err
	}
	scaled, err := score.ExtractScaled(witnessPath, scale)
	if err != nil {
		log.Warn().Err(err).Msg("scaled score unavailable, metadata will omit it")
	} else {
		md.ScaledScore = &scaled
	}

	buf, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return score.Metadata{}, fmt.Errorf("encode metadata: %w", err)
	}

	mdPath, err := store.Resolve(artifacts.Subject, artifacts.Metadata, in.Address)
	if err != nil {
		return score.Metadata{}, err
	}
	if err := os.WriteFile(mdPath, buf, 0o644); err != nil {
		return score.Metadata{}, fmt.Errorf("write metadata: %w", err)
	}

	// The registry copy is a convenience; losing it does not invalidate the run.
	entry := filepath.Join(store.RegistryDir(), filepath.Base(store.SubjectDir(in.Address))+".json")
	if err := store.EnsureDir(entry); err != nil {
		log.Warn().Err(err).Msg("registry dir not created")
		return md, nil
	}
	if err := os.WriteFile(entry, buf, 0o644); err != nil {
		log.Warn().Err(err).Str("path", entry).Msg("registry entry not written")
	}
	return md, nil
}

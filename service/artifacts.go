package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits"
	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits/ballotproof"
	"github.com/harudayoo/phoniphaleia-vs-sub000/config"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/util"
)

// LoadBallotKeys returns the ballot circuit keys. Pinned artifacts are read
// from the cache, or downloaded concurrently when missing. Without pinned
// artifacts a fresh setup is run and stored in the cache. The circom
// verification key is read from its file when configured.
func LoadBallotKeys(ctx context.Context, conf config.Artifacts, timeout time.Duration) (*ballotproof.Keys, error) {
	keys, err := loadGnarkKeys(ctx, conf, timeout)
	if err != nil {
		return nil, err
	}
	if conf.CircomVerifyingKeyFile != "" {
		if err := loadCircomKey(keys, conf.CircomVerifyingKeyFile); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func loadCircomKey(keys *ballotproof.Keys, path string) error {
	vk, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read circom verification key: %w", err)
	}
	if err := keys.SetCircomVerifyingKey(vk); err != nil {
		return err
	}
	log.Infow("circom ballot proofs enabled", "verificationKey", path)
	return nil
}

func loadGnarkKeys(ctx context.Context, conf config.Artifacts, timeout time.Duration) (*ballotproof.Keys, error) {
	if !conf.Configured() {
		keys, err := ballotproof.Setup()
		if err != nil {
			return nil, err
		}
		artifacts, err := keys.Artifacts()
		if err != nil {
			return nil, fmt.Errorf("store ballot artifacts: %w", err)
		}
		ccs, pk, vk := artifacts.Hashes()
		log.Infow("ballot circuit artifacts stored",
			"dir", circuits.BaseDir,
			"circuit", ccs.String(),
			"provingKey", pk.String(),
			"verifyingKey", vk.String())
		return keys, nil
	}

	artifacts, err := pinnedArtifacts(conf)
	if err != nil {
		return nil, err
	}
	if err := DownloadArtifacts(ctx, timeout, artifacts); err != nil {
		return nil, err
	}
	keys, err := ballotproof.LoadKeys(artifacts)
	if err != nil {
		return nil, err
	}
	if !keys.CanProve() {
		log.Warnw("ballot proving key not configured, proof generation disabled")
	}
	return keys, nil
}

func pinnedArtifacts(conf config.Artifacts) (*circuits.CircuitArtifacts, error) {
	var list [3]*circuits.Artifact
	for i, a := range []struct{ name, hash, url string }{
		{"ballot circuit definition", conf.CircuitHash, conf.CircuitURL},
		{"ballot proving key", conf.ProvingKeyHash, conf.ProvingKeyURL},
		{"ballot verifying key", conf.VerifyingKeyHash, conf.VerifyingKeyURL},
	} {
		if a.hash == "" {
			continue
		}
		hash, err := hex.DecodeString(util.TrimHex(a.hash))
		if err != nil || len(hash) != sha256.Size {
			return nil, fmt.Errorf("%s: malformed hash %q", a.name, a.hash)
		}
		list[i] = &circuits.Artifact{Name: a.name, RemoteURL: a.url, Hash: hash}
	}
	return circuits.NewCircuitArtifacts(list[0], list[1], list[2]), nil
}

// DownloadArtifacts downloads the missing artifacts of every circuit
// concurrently.
func DownloadArtifacts(ctx context.Context, timeout time.Duration, all ...*circuits.CircuitArtifacts) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, artifacts := range all {
		g.Go(func() error {
			return artifacts.DownloadAll(ctx)
		})
	}
	return g.Wait()
}

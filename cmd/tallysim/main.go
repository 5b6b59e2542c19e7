// Command tallysim runs a whole election in process and reports the
// duration of every phase: key generation, voting, aggregation and
// threshold decryption.
package main

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/vocdoni/arbo/memdb"

	"github.com/harudayoo/phoniphaleia-vs-sub000/api"
	"github.com/harudayoo/phoniphaleia-vs-sub000/ballot"
	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits/ballotproof"
	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/homomorphic"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/orchestrator"
	"github.com/harudayoo/phoniphaleia-vs-sub000/service"
	"github.com/harudayoo/phoniphaleia-vs-sub000/storage"
	"github.com/harudayoo/phoniphaleia-vs-sub000/threshold"
)

const electionID = 1

func main() {
	numVoters := flag.Int("voters", 20, "number of voters")
	numCandidates := flag.Int("candidates", 4, "number of candidates of the single position")
	participants := flag.Int("participants", 5, "number of trustees")
	t := flag.Int("threshold", 3, "shares needed to decrypt")
	scheme := flag.String("scheme", string(homomorphic.SchemeElGamal), "cryptosystem (elgamal or paillier)")
	paillierBits := flag.Int("paillierbits", 1024, "Paillier modulus size")
	partials := flag.Bool("partials", false, "decrypt with verifiable partial decryptions instead of key shares (elgamal only)")
	flag.Parse()
	log.Init(log.LogLevelInfo, "stdout", nil)

	setupStart := time.Now()
	keys, err := ballotproof.Setup()
	if err != nil {
		log.Fatalf("ballot circuit setup: %v", err)
	}
	log.Infow("circuit setup phase", "duration", time.Since(setupStart).String())

	store := storage.New(memdb.New())
	defer store.Close()
	es := service.NewElections(store, keys, service.ElectionsConfig{PaillierBits: *paillierBits})

	// Key generation
	keygenStart := time.Now()
	position := &ballot.Position{ID: 1}
	for i := 1; i <= *numCandidates; i++ {
		position.Candidates = append(position.Candidates, uint64(i))
	}
	election, shares, err := es.Create(&api.NewElection{
		ID:           electionID,
		Scheme:       homomorphic.Scheme(*scheme),
		Participants: *participants,
		Threshold:    *t,
		Positions:    []*ballot.Position{position},
	})
	if err != nil {
		log.Fatalf("create election: %v", err)
	}
	log.Infow("key generation phase", "duration", time.Since(keygenStart).String(),
		"fingerprint", election.Config.Fingerprint.String())

	// Voting: every voter proves and casts a random choice
	votingStart := time.Now()
	expected := make(map[uint64]uint64)
	ctx := context.Background()
	for i := 0; i < *numVoters; i++ {
		choice, err := rand.Int(rand.Reader, big.NewInt(int64(*numCandidates)))
		if err != nil {
			log.Fatalf("random vote: %v", err)
		}
		candidate := position.Candidates[choice.Int64()]
		secret, err := ballotproof.RandomFieldElement()
		if err != nil {
			log.Fatalf("voter secret: %v", err)
		}
		ballots, err := es.Prove(ctx, electionID, secret, []ballot.Selection{{PositionID: position.ID, CandidateID: candidate}})
		if err != nil {
			log.Fatalf("prove vote %d: %v", i, err)
		}
		if err := es.Cast(electionID, ballots); err != nil {
			log.Fatalf("cast vote %d: %v", i, err)
		}
		expected[candidate]++
	}
	log.Infow("voting phase", "duration", time.Since(votingStart).String(), "voters", *numVoters)

	// Aggregation
	if err := es.Close(electionID); err != nil {
		log.Fatal(err)
	}
	aggregationStart := time.Now()
	if _, err := es.StartTally(ctx, electionID); err != nil {
		log.Fatalf("tally: %v", err)
	}
	log.Infow("aggregation phase", "duration", time.Since(aggregationStart).String())

	// Decryption with the first t trustees
	decryptionStart := time.Now()
	var status orchestrator.Status
	if *partials {
		targets, err := es.Targets(electionID)
		if err != nil {
			log.Fatal(err)
		}
		for _, share := range shares[:*t] {
			set, err := orchestrator.NewPartialSet(election.Config, share, targets)
			if err != nil {
				log.Fatalf("partial decryption of trustee %d: %v", share.Index, err)
			}
			if status, err = es.SubmitPartials(electionID, set); err != nil {
				log.Fatalf("submit partials of trustee %d: %v", share.Index, err)
			}
		}
	} else {
		lines := make([]string, *t)
		for i, share := range shares[:*t] {
			lines[i] = share.String()
		}
		if status, err = es.SubmitShares(electionID, lines); err != nil {
			log.Fatalf("submit shares: %v", err)
		}
	}
	wipeShares(shares)
	log.Infow("decryption phase", "duration", time.Since(decryptionStart).String(),
		"state", string(status.State), "mode", string(status.Mode))

	results, err := es.Results(electionID)
	if err != nil {
		log.Fatalf("results: %v", err)
	}
	ok := results.Summary.Verified
	for _, r := range results.Results {
		log.Infow("result", "candidate", r.CandidateID, "votes", r.VoteCount, "expected", expected[r.CandidateID])
		if r.VoteCount != expected[r.CandidateID] {
			ok = false
		}
	}
	if !ok {
		log.Fatal("mismatch: decrypted counts do not match the votes cast")
	}
	log.Infow("success: decrypted counts match the votes cast", "total", results.Summary.TotalDecrypted)
}

func wipeShares(shares []*threshold.KeyShare) {
	for _, s := range shares {
		s.Wipe()
	}
}

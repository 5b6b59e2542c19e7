package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"

	"github.com/harudayoo/phoniphaleia-vs-sub000/circuits"
	"github.com/harudayoo/phoniphaleia-vs-sub000/config"
	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/service"
	"github.com/harudayoo/phoniphaleia-vs-sub000/storage"
)

func main() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	host := flag.String("host", config.DefaultAPIHost, "API host to listen on")
	port := flag.Int("port", config.DefaultAPIPort, "API port to listen on")
	dataDir := flag.String("datadir", filepath.Join(home, config.DefaultDataDir), "data directory")
	artifactsDir := flag.String("artifactsdir", circuits.BaseDir, "circuit artifacts cache directory")
	logLevel := flag.String("loglevel", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	logOutput := flag.String("logoutput", "stdout", "log output (stdout, stderr or a file path)")
	paillierBits := flag.Int("paillierbits", config.DefaultPaillierBits, "Paillier modulus size of new elections")
	curve := flag.String("curve", config.DefaultCurve, "ElGamal curve of new elections")
	proofTimeout := flag.Duration("prooftimeout", config.DefaultProofTimeout, "timeout of the proof generation of a submission")
	maxProofs := flag.Int("maxproofs", 0, "proofs generated at once (0 uses the number of CPUs)")
	artifactsTimeout := flag.Duration("artifactstimeout", config.DefaultArtifactsTimeout, "timeout of the circuit artifacts download")

	var artifacts config.Artifacts
	flag.StringVar(&artifacts.CircuitHash, "circuithash", "", "sha256 of the ballot circuit definition")
	flag.StringVar(&artifacts.CircuitURL, "circuiturl", "", "download URL of the ballot circuit definition")
	flag.StringVar(&artifacts.ProvingKeyHash, "provingkeyhash", "", "sha256 of the ballot proving key")
	flag.StringVar(&artifacts.ProvingKeyURL, "provingkeyurl", "", "download URL of the ballot proving key")
	flag.StringVar(&artifacts.VerifyingKeyHash, "verifyingkeyhash", "",
		"sha256 of the ballot verifying key; when empty a local setup is run")
	flag.StringVar(&artifacts.VerifyingKeyURL, "verifyingkeyurl", "", "download URL of the ballot verifying key")
	flag.StringVar(&artifacts.CircomVerifyingKeyFile, "circomvk", "",
		"snarkjs verification key of the circom ballot circuit; enables circom ballot proofs")

	flag.Parse()
	if err := loadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Init(*logLevel, *logOutput, nil)
	circuits.BaseDir = *artifactsDir

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	keys, err := service.LoadBallotKeys(ctx, artifacts, *artifactsTimeout)
	if err != nil {
		log.Fatalf("failed to load ballot circuit keys: %v", err)
	}

	database, err := metadb.New(db.TypePebble, filepath.Join(*dataDir, "storage"))
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	store := storage.New(database)
	defer store.Close()

	elections := service.NewElections(store, keys, service.ElectionsConfig{
		PaillierBits:        *paillierBits,
		Curve:               *curve,
		ProofTimeout:        *proofTimeout,
		MaxConcurrentProofs: *maxProofs,
	})
	apiService := service.NewAPI(elections, *host, *port)
	if err := apiService.Start(ctx); err != nil {
		log.Fatal(err)
	}
	h, p := apiService.HostPort()
	log.Infow("tally daemon ready", "host", h, "port", p, "datadir", *dataDir, "artifacts", circuits.BaseDir)

	<-ctx.Done()
	log.Info("shutting down")
	apiService.Stop()
}

// loadEnv sets every flag not given on the command line from its
// PHONIPHALEIA_<NAME> environment variable.
func loadEnv() error {
	var err error
	flag.VisitAll(func(f *flag.Flag) {
		if f.Changed || err != nil {
			return
		}
		v, ok := os.LookupEnv(config.EnvPrefix + strings.ToUpper(f.Name))
		if !ok {
			return
		}
		if serr := f.Value.Set(v); serr != nil {
			err = fmt.Errorf("invalid %s%s: %w", config.EnvPrefix, strings.ToUpper(f.Name), serr)
		}
	})
	return err
}

// Package circuits holds the zkSNARK artifact cache shared by the circuits of
// the engine: constraint systems and Groth16 keys are addressed by the
// sha256 of their content, kept under BaseDir and optionally downloaded.
package circuits

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// CheckHashes determines if the hashes of the artifacts are checked when
// they are loaded or downloaded. It can be disabled by setting the
// PHONIPHALEIA_CHECK_HASHES environment variable to false or 0.
var CheckHashes = true

// BaseDir is the path of the artifact cache. Defaults to the env var
// PHONIPHALEIA_ARTIFACTS_DIR or ~/.cache/phoniphaleia-artifacts.
var BaseDir string

func init() {
	if checkHashes := os.Getenv("PHONIPHALEIA_CHECK_HASHES"); checkHashes != "" {
		if strings.ToLower(checkHashes) == "false" || checkHashes == "0" {
			CheckHashes = false
		}
	}
	if dir := os.Getenv("PHONIPHALEIA_ARTIFACTS_DIR"); dir != "" {
		BaseDir = dir
		return
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		BaseDir = filepath.Join(os.TempDir(), "phoniphaleia-artifacts")
		return
	}
	BaseDir = filepath.Join(home, ".cache", "phoniphaleia-artifacts")
}

// Artifact is a content-addressed blob: a constraint system, a proving key
// or a verifying key.
type Artifact struct {
	Name      string
	RemoteURL string
	Hash      types.HexBytes
	Content   []byte
}

// NewArtifact serializes v into a new artifact and stores it in the cache.
func NewArtifact(name string, v io.WriterTo) (*Artifact, error) {
	var buf bytes.Buffer
	if _, err := v.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize %s: %w", name, err)
	}
	a := &Artifact{Name: name, Content: buf.Bytes()}
	if err := a.Store(); err != nil {
		return nil, err
	}
	return a, nil
}

// Load reads the artifact from the local cache unless its content is
// already in memory, checking the content hash.
func (a *Artifact) Load() error {
	if len(a.Content) != 0 {
		return nil
	}
	if len(a.Hash) == 0 {
		return fmt.Errorf("%s: hash not provided", a.Name)
	}
	content, err := load(a.Hash)
	if err != nil {
		return err
	}
	if content == nil {
		return fmt.Errorf("%s: not found in %s", a.Name, BaseDir)
	}
	a.Content = content
	return nil
}

// Store writes the content to the cache and sets the hash from it.
func (a *Artifact) Store() error {
	if len(a.Content) == 0 {
		return fmt.Errorf("%s: no content to store", a.Name)
	}
	sum := sha256.Sum256(a.Content)
	a.Hash = sum[:]
	if err := os.MkdirAll(BaseDir, 0o755); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}
	path := filepath.Join(BaseDir, a.Hash.String())
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	tmp := path + ".partial"
	if err := os.WriteFile(tmp, a.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", a.Name, err)
	}
	return os.Rename(tmp, path)
}

// Download fetches the artifact from RemoteURL into the cache, unless it is
// already there, and loads it.
func (a *Artifact) Download(ctx context.Context) error {
	if err := a.Load(); err == nil {
		return nil
	}
	if a.RemoteURL == "" {
		return fmt.Errorf("%s: not cached and remote url not provided", a.Name)
	}
	if err := downloadAndStore(ctx, a.Hash, a.RemoteURL); err != nil {
		return fmt.Errorf("%s: %w", a.Name, err)
	}
	return a.Load()
}

// CircuitArtifacts groups the artifacts of a Groth16 circuit.
type CircuitArtifacts struct {
	circuitDefinition *Artifact
	provingKey        *Artifact
	verifyingKey      *Artifact
}

// NewCircuitArtifacts returns the artifacts of a circuit. Any of them can be
// nil, e.g. a verifier only needs the verifying key.
func NewCircuitArtifacts(circuit, provingKey, verifyingKey *Artifact) *CircuitArtifacts {
	return &CircuitArtifacts{
		circuitDefinition: circuit,
		provingKey:        provingKey,
		verifyingKey:      verifyingKey,
	}
}

func (ca *CircuitArtifacts) all() []*Artifact {
	var list []*Artifact
	for _, a := range []*Artifact{ca.circuitDefinition, ca.provingKey, ca.verifyingKey} {
		if a != nil {
			list = append(list, a)
		}
	}
	return list
}

// LoadAll loads every artifact from the local cache.
func (ca *CircuitArtifacts) LoadAll() error {
	for _, a := range ca.all() {
		if err := a.Load(); err != nil {
			return fmt.Errorf("error loading artifact: %w", err)
		}
	}
	return nil
}

// DownloadAll downloads the artifacts missing from the local cache.
func (ca *CircuitArtifacts) DownloadAll(ctx context.Context) error {
	for _, a := range ca.all() {
		if err := a.Download(ctx); err != nil {
			return fmt.Errorf("error downloading artifact: %w", err)
		}
	}
	return nil
}

// CircuitDefinition returns the serialized constraint system, or nil.
func (ca *CircuitArtifacts) CircuitDefinition() types.HexBytes {
	if ca.circuitDefinition == nil {
		return nil
	}
	return ca.circuitDefinition.Content
}

// ProvingKey returns the serialized proving key, or nil.
func (ca *CircuitArtifacts) ProvingKey() types.HexBytes {
	if ca.provingKey == nil {
		return nil
	}
	return ca.provingKey.Content
}

// VerifyingKey returns the serialized verifying key, or nil.
func (ca *CircuitArtifacts) VerifyingKey() types.HexBytes {
	if ca.verifyingKey == nil {
		return nil
	}
	return ca.verifyingKey.Content
}

// Hashes returns the content hashes of the circuit definition, proving key
// and verifying key, with nil for missing artifacts.
func (ca *CircuitArtifacts) Hashes() (circuit, provingKey, verifyingKey types.HexBytes) {
	hashOf := func(a *Artifact) types.HexBytes {
		if a == nil {
			return nil
		}
		return a.Hash
	}
	return hashOf(ca.circuitDefinition), hashOf(ca.provingKey), hashOf(ca.verifyingKey)
}

func checkHash(content, expected []byte) error {
	if !CheckHashes {
		return nil
	}
	sum := sha256.Sum256(content)
	if !bytes.Equal(sum[:], expected) {
		return fmt.Errorf("hash mismatch: expected %x, got %x", expected, sum)
	}
	return nil
}

func load(hash []byte) ([]byte, error) {
	path := filepath.Join(BaseDir, hex.EncodeToString(hash))
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	if err := checkHash(content, hash); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return content, nil
}

// downloadAndStore downloads a file and stores it in the local cache after
// checking its hash.
func downloadAndStore(ctx context.Context, expectedHash []byte, fileURL string) error {
	if _, err := url.Parse(fileURL); err != nil {
		return fmt.Errorf("error parsing the file URL provided: %w", err)
	}
	if err := os.MkdirAll(BaseDir, 0o755); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}
	path := filepath.Join(BaseDir, hex.EncodeToString(expectedHash))
	partialPath := path + ".partial"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("error creating the file request: %w", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error performing the request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("error downloading file %s: http status: %d", fileURL, res.StatusCode)
	}
	fd, err := os.Create(partialPath)
	if err != nil {
		return fmt.Errorf("error opening artifact file: %w", err)
	}
	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(fd, hasher), res.Body)
	if closeErr := fd.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(partialPath)
		return fmt.Errorf("error copying data to file: %w", err)
	}
	if CheckHashes && !bytes.Equal(hasher.Sum(nil), expectedHash) {
		os.Remove(partialPath)
		return fmt.Errorf("hash mismatch: expected %x, got %x", expectedHash, hasher.Sum(nil))
	}
	log.Debugw("artifact downloaded", "url", fileURL, "bytes", n)
	return os.Rename(partialPath, path)
}

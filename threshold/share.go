package threshold

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/harudayoo/phoniphaleia-vs-sub000/crypto/arith"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

var shareFormat = regexp.MustCompile(`^\d+:[0-9a-fA-F]+$`)

// KeyShare is one trustee's evaluation of the key polynomial. Its text form
// is "<index>:<hex value>".
type KeyShare struct {
	Index       int
	AuthorityID string
	Value       *big.Int
}

// String returns the distribution format "<index>:<hex>".
func (s *KeyShare) String() string {
	return fmt.Sprintf("%d:%s", s.Index, s.Value.Text(16))
}

// ParseShare parses a share in the distribution format. Surrounding
// whitespace is ignored.
func ParseShare(line string) (*KeyShare, error) {
	line = strings.TrimSpace(line)
	if !shareFormat.MatchString(line) {
		return nil, fmt.Errorf("%w: expected <index>:<hex>", types.ErrInvalidShareFormat)
	}
	idx, hexValue, _ := strings.Cut(line, ":")
	index, err := strconv.Atoi(idx)
	if err != nil || index < 1 {
		return nil, fmt.Errorf("%w: bad index %q", types.ErrInvalidShareFormat, idx)
	}
	value, ok := new(big.Int).SetString(hexValue, 16)
	if !ok {
		return nil, fmt.Errorf("%w: bad value", types.ErrInvalidShareFormat)
	}
	return &KeyShare{Index: index, Value: value}, nil
}

// ValidateShare checks that the share belongs to cfg: the index is in 1..n
// and the value is an element of the Shamir field.
func ValidateShare(cfg *ElectionKeyConfig, s *KeyShare) error {
	if s == nil || s.Value == nil {
		return fmt.Errorf("%w: empty share", types.ErrInvalidShareFormat)
	}
	if s.Index < 1 || s.Index > cfg.Participants {
		return fmt.Errorf("%w: index %d out of range 1..%d", types.ErrInvalidShareFormat, s.Index, cfg.Participants)
	}
	if s.Value.Sign() < 0 || s.Value.Cmp(cfg.Field()) >= 0 {
		return fmt.Errorf("%w: value exceeds the field modulus", types.ErrInvalidShareFormat)
	}
	if s.AuthorityID != "" && len(cfg.Authorities) > 0 && cfg.Authorities[s.Index-1] != s.AuthorityID {
		return fmt.Errorf("%w: index %d does not belong to %s", types.ErrInvalidShareFormat, s.Index, s.AuthorityID)
	}
	return nil
}

// Clone returns a deep copy of the share.
func (s *KeyShare) Clone() *KeyShare {
	return &KeyShare{Index: s.Index, AuthorityID: s.AuthorityID, Value: new(big.Int).Set(s.Value)}
}

// Wipe zeroes the share value in place.
func (s *KeyShare) Wipe() {
	if s != nil {
		arith.Wipe(s.Value)
	}
}

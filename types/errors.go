package types

import "errors"

// Error taxonomy shared by every stage of the tally engine. Errors returned by
// the engine wrap one of these sentinels and can be matched with errors.Is.
var (
	ErrInvalidThreshold              = errors.New("invalid threshold")
	ErrInvalidPublicKey              = errors.New("invalid public key")
	ErrProofGenerationFailed         = errors.New("proof generation failed")
	ErrProofVerificationFailed       = errors.New("proof verification failed")
	ErrMultipleSelectionsForPosition = errors.New("multiple selections for position")
	ErrEmptyTallySet                 = errors.New("empty tally set")
	ErrInvalidShareFormat            = errors.New("invalid share format")
	ErrReconstructionFailed          = errors.New("reconstruction failed")
	ErrDecryptionFailed              = errors.New("decryption failed")
	ErrTallyIntegrityMismatch        = errors.New("tally integrity mismatch")

	// ErrInsufficientShares is wrapped by ErrReconstructionFailed when fewer
	// shares than the threshold are offered.
	ErrInsufficientShares = errors.New("insufficient shares")
)

// IsRecoverable reports whether err is a format or validation error that the
// caller can fix by resubmitting. Cryptographic integrity errors are never
// recoverable.
func IsRecoverable(err error) bool {
	switch {
	case errors.Is(err, ErrReconstructionFailed),
		errors.Is(err, ErrTallyIntegrityMismatch),
		errors.Is(err, ErrProofVerificationFailed),
		errors.Is(err, ErrDecryptionFailed):
		return false
	case errors.Is(err, ErrInvalidShareFormat),
		errors.Is(err, ErrMultipleSelectionsForPosition),
		errors.Is(err, ErrInsufficientShares):
		return true
	}
	return false
}

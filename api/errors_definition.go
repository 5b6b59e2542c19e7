//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400, 404, 409 or 422, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX
// If you notice there's a gap (say, error code 4010, 4011 and 4013 exist, 4012 is missing) DON'T fill in the gap,
// that code was used in the past for some error (not anymore) and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	ErrResourceNotFound        = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody           = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed body")}
	ErrMalformedElectionID     = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed election ID")}
	ErrElectionNotFound        = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("election not found")}
	ErrElectionExists          = Error{Code: 40008, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election already exists")}
	ErrElectionClosed          = Error{Code: 40009, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election is closed")}
	ErrElectionOpen            = Error{Code: 40010, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election is not closed")}
	ErrInvalidThreshold        = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid threshold")}
	ErrInvalidPublicKey        = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid public key")}
	ErrMultipleSelections      = Error{Code: 40013, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("multiple selections for position")}
	ErrInvalidShareFormat      = Error{Code: 40014, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid share format")}
	ErrInsufficientShares      = Error{Code: 40015, HTTPstatus: http.StatusUnprocessableEntity, Err: fmt.Errorf("insufficient shares")}
	ErrProofVerificationFailed = Error{Code: 40016, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("proof verification failed")}
	ErrDuplicateBallot         = Error{Code: 40017, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("ballot already cast")}
	ErrTallyNotStarted         = Error{Code: 40018, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("tally not started")}
	ErrTallyInProgress         = Error{Code: 40019, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("tally already in progress")}
	ErrTallyWrongState         = Error{Code: 40020, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("operation not allowed in the current tally state")}
	ErrEmptyTallySet           = Error{Code: 40021, HTTPstatus: http.StatusUnprocessableEntity, Err: fmt.Errorf("empty tally set")}
	ErrReconstructionFailed    = Error{Code: 40022, HTTPstatus: http.StatusUnprocessableEntity, Err: fmt.Errorf("reconstruction failed")}
	ErrTallyAborted            = Error{Code: 40023, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("tally aborted")}
	ErrResultsNotPublished     = Error{Code: 40024, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("results not published")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrProofGenerationFailed      = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("proof generation failed")}
	ErrDecryptionFailed           = Error{Code: 50004, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("decryption failed")}
	ErrTallyIntegrityMismatch     = Error{Code: 50005, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("tally integrity mismatch")}
	ErrProofTimeout               = Error{Code: 50006, HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("proof generation timed out")}
)

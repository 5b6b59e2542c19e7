package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/harudayoo/phoniphaleia-vs-sub000/orchestrator"
	"github.com/harudayoo/phoniphaleia-vs-sub000/storage"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

func TestErrorFor(t *testing.T) {
	c := qt.New(t)
	for _, tc := range []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: 9", storage.ErrNotFound), ErrResourceNotFound.Code},
		{storage.ErrDuplicateBallot, ErrDuplicateBallot.Code},
		{orchestrator.ErrNoSession, ErrTallyNotStarted.Code},
		{orchestrator.ErrNotClosed, ErrElectionOpen.Code},
		{fmt.Errorf("%w: %w", types.ErrReconstructionFailed, types.ErrInsufficientShares), ErrInsufficientShares.Code},
		{fmt.Errorf("%w: bad share", types.ErrReconstructionFailed), ErrReconstructionFailed.Code},
		{fmt.Errorf("%w: index 0", types.ErrInvalidShareFormat), ErrInvalidShareFormat.Code},
		{fmt.Errorf("%w: position 1", types.ErrMultipleSelectionsForPosition), ErrMultipleSelections.Code},
		{fmt.Errorf("%w: forged", types.ErrProofVerificationFailed), ErrProofVerificationFailed.Code},
		{fmt.Errorf("%w: %w", types.ErrProofGenerationFailed, context.DeadlineExceeded), ErrProofTimeout.Code},
		{types.ErrTallyIntegrityMismatch, ErrTallyIntegrityMismatch.Code},
		{ErrMalformedBody.With("x"), ErrMalformedBody.Code},
		{fmt.Errorf("disk on fire"), ErrGenericInternalServerError.Code},
	} {
		c.Check(errorFor(tc.err).Code, qt.Equals, tc.code, qt.Commentf("%v", tc.err))
	}

	c.Assert(electionError(storage.ErrNotFound).Code, qt.Equals, ErrElectionNotFound.Code)
}

func TestErrorWrite(t *testing.T) {
	c := qt.New(t)
	w := httptest.NewRecorder()
	ErrElectionClosed.Withf("election %d", 3).Write(w)
	c.Assert(w.Code, qt.Equals, http.StatusConflict)

	var body struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	c.Assert(json.Unmarshal(w.Body.Bytes(), &body), qt.IsNil)
	c.Assert(body.Code, qt.Equals, 40009)
	c.Assert(body.Error, qt.Equals, "election is closed: election 3")
}

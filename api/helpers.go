package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/harudayoo/phoniphaleia-vs-sub000/log"
	"github.com/harudayoo/phoniphaleia-vs-sub000/types"
)

// maxBodySize bounds request bodies. A full submission carries one proof
// per position, a few hundred bytes each.
const maxBodySize = 4 << 20

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data any) {
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// electionID parses the election ID path parameter.
func electionID(r *http.Request) (types.ElectionID, error) {
	id, err := types.ParseElectionID(chi.URLParam(r, ElectionURLParam))
	if err != nil {
		return 0, ErrMalformedElectionID.WithErr(err)
	}
	return id, nil
}

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v); err != nil {
		return ErrMalformedBody.Withf("could not decode request body: %v", err)
	}
	return nil
}

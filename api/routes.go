package api

import "strings"

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// ElectionsEndpoint is the endpoint for creating a new election
	ElectionsEndpoint = "/elections"
	// ElectionURLParam is the election ID path parameter, a decimal uint64
	ElectionURLParam = "electionId"
	// ElectionEndpoint is the endpoint to get the election info
	ElectionEndpoint = "/elections/{" + ElectionURLParam + "}"
	// ProofsEndpoint builds the encrypted and proven ballots of a voter.
	// It is a client helper: the voter secret is sent to the server.
	ProofsEndpoint = ElectionEndpoint + "/proofs"
	// BallotsEndpoint is the endpoint for casting the ballots of a voter
	BallotsEndpoint = ElectionEndpoint + "/ballots"
	// CloseEndpoint signals that the voting period is over
	CloseEndpoint = ElectionEndpoint + "/close"
	// TallyEndpoint starts (POST), inspects (GET) or aborts (DELETE) the
	// decryption session of the election
	TallyEndpoint = ElectionEndpoint + "/tally"
	// TallySharesEndpoint receives key shares, one "<index>:<hex>" per line
	TallySharesEndpoint = TallyEndpoint + "/shares"
	// TallyTargetsEndpoint lists the aggregates trustees partially decrypt
	TallyTargetsEndpoint = TallyEndpoint + "/targets"
	// TallyPartialsEndpoint receives the partial decryptions of a trustee
	TallyPartialsEndpoint = TallyEndpoint + "/partials"
	// ResultsEndpoint returns the published results
	ResultsEndpoint = ElectionEndpoint + "/results"
)

// EndpointWithParam replaces the election ID parameter of an endpoint.
func EndpointWithParam(endpoint, value string) string {
	return strings.ReplaceAll(endpoint, "{"+ElectionURLParam+"}", value)
}

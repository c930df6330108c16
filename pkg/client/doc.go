// Package client talks to the recommender service. A Client resolves the
// endpoint for a method from the contract catalog, issues one GET, and
// classifies the outcome into recommendations, a server reported failure
// (*StatusError) or a transport failure (ErrTransport). Calls run behind a
// circuit breaker that only counts transport failures.
package client

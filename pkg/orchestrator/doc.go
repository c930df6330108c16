// Package orchestrator wires the recommender contract, HTTP client, form
// model and renderer registry into one value that surfaces (web, prompt,
// one-shot CLI) share.
package orchestrator

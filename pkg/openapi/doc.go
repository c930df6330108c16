// Package openapi describes the recommender service contract. The contract is
// an OpenAPI 3 document (an embedded default or a file supplied by the
// operator) that is parsed with kin-openapi into a Catalog mapping each
// recommendation method to the endpoint and query parameters it uses.
package openapi

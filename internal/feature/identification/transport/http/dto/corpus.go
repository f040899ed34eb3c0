// Package dto defines data transfer objects for the identification HTTP API.
package dto

// CorpusRefreshResponse reports the reference images in the swapped-in corpus.
type CorpusRefreshResponse struct {
	References int      `json:"references"`
	IDs        []string `json:"ids"`
}

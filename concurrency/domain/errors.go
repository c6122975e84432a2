package domain

import "errors"

// Erros de configuração/sequenciamento. Nenhum deles é transitório:
// não devem ser retentados automaticamente por quem chamou.
var (
	// ErrMissingToken indica que nenhum token foi encontrado em nenhuma fonte
	// (nem payload, nem ambiente).
	ErrMissingToken = errors.New("replicate api token is required (set REPLICATE_API_TOKEN or pass it explicitly)")

	// ErrNotInitialized indica uso do gate/status antes do primeiro GetOrCreate.
	ErrNotInitialized = errors.New("global concurrency manager not initialized")
)

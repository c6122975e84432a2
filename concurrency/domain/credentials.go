package domain

import "strings"

// DefaultMaxConcurrent é o limite global usado quando nenhuma fonte define um
// valor válido.
const DefaultMaxConcurrent = 60

// Credentials é o par (token, limite global de concorrência) resolvido para a
// conta Replicate.
//
// Imutável depois que o gerenciador é construído, exceto pela operação
// administrativa UpdateCredentials.
type Credentials struct {
	APIToken      string
	MaxConcurrent int
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.APIToken) == "" {
		return ErrMissingToken
	}
	return nil
}

// MaskedToken retorna um prefixo curto do token, para logs.
// O token completo nunca deve aparecer em log.
func (c Credentials) MaskedToken() string {
	const keep = 12
	if len(c.APIToken) <= keep {
		return strings.Repeat("*", len(c.APIToken))
	}
	return c.APIToken[:keep] + "..."
}

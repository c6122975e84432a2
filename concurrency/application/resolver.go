package application

import (
	"os"
	"strconv"
	"strings"

	"replicate-gate/concurrency/domain"

	log "github.com/sirupsen/logrus"
)

// Variáveis de ambiente consultadas na resolução de credenciais.
const (
	EnvAPIToken      = "REPLICATE_API_TOKEN"
	EnvMaxConcurrent = "REPLICATE_GLOBAL_MAX_CONCURRENT"
)

// ResolveCredentials resolve (token, limite global) com prioridade por campo:
// payload > ambiente > default. Zero-value no payload significa "não informado".
//
// Regras:
//   - token ausente em todas as fontes → domain.ErrMissingToken (erro de
//     configuração, não deve ser retentado)
//   - limite do ambiente que não parseia como inteiro positivo → warning e
//     fallback para o default (60); nunca falha
//
// Efeito colateral: em caso de sucesso, o token resolvido é gravado de volta
// em REPLICATE_API_TOKEN para que colaboradores (ex: o client da Replicate) o
// enxerguem sem re-resolver.
func ResolveCredentials(payloadToken string, payloadLimit int) (domain.Credentials, error) {
	token := strings.TrimSpace(payloadToken)
	if token == "" {
		token = strings.TrimSpace(os.Getenv(EnvAPIToken))
	}
	if token == "" {
		return domain.Credentials{}, domain.ErrMissingToken
	}

	limit := payloadLimit
	if limit <= 0 {
		limit = limitFromEnv()
	}

	if err := os.Setenv(EnvAPIToken, token); err != nil {
		return domain.Credentials{}, err
	}

	return domain.Credentials{APIToken: token, MaxConcurrent: limit}, nil
}

func limitFromEnv() int {
	raw, ok := os.LookupEnv(EnvMaxConcurrent)
	if !ok || strings.TrimSpace(raw) == "" {
		return domain.DefaultMaxConcurrent
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		log.WithFields(log.Fields{
			"env":     EnvMaxConcurrent,
			"value":   raw,
			"default": domain.DefaultMaxConcurrent,
		}).Warn("invalid global max concurrent value, falling back to default")
		return domain.DefaultMaxConcurrent
	}
	return n
}

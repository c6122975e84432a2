// Package domain define contratos e tipos de domínio para o controle global
// de concorrência da conta Replicate.
//
// Este pacote não depende de logging, Redis nem do singleton de processo.
// A intenção é permitir testes de unidade puros e desacoplar as regras de
// admissão de detalhes de infraestrutura.
package domain

// Package application contém os casos de uso do controle de concorrência:
// resolução de credenciais, aquisição de vaga com timeout e execução de lotes.
//
// Ele depende apenas do pacote domain (mais logging) e não conhece o singleton
// de processo nem detalhes de Redis/HTTP.
package application

// utilitário pequeno para formatação rápida/consistente de valores numéricos
// em headers HTTP. Evita puxar fmt só para isso e mantém o float sem notação
// científica em valores comuns.

package concurrency

import "strconv"

func formatInt(v int) string { return strconv.Itoa(v) }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

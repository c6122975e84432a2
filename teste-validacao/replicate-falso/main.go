package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

// Servidor fake da Replicate para validar o gate-demo na mão:
// segura cada requisição por um tempo fixo, simulando a geração de imagem.
// Rode com FAKE_API_URL=http://localhost:8082/predict no demo.
func main() {
	hold := 1 * time.Second
	if v := os.Getenv("HOLD"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			hold = d
		}
	}

	http.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(hold)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"succeeded","hold":"%s"}`, hold)
		fmt.Println("Log: requisição atendida em /predict")
	})

	addr := ":8082"
	fmt.Printf("Servidor fake rodando em http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}

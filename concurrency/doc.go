// Package concurrency fornece o controle global de concorrência da conta
// Replicate: um gerenciador único por processo que todos os lotes dividem.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (gate, credenciais, status, eventos)
//   - application: casos de uso (resolução de credenciais, admissão com
//     timeout, execução de lote) sem conhecer o singleton
//   - infra: implementações concretas (semáforo de channel, pacing x/time/rate,
//     estatísticas em memória/Redis)
//   - concurrency (este pacote): o Manager, o singleton de processo e o
//     handler HTTP de status
//
// Fluxo em um worker de lote:
//
//  1. GetOrCreate(token, limite) na subida — a primeira chamada do processo
//     resolve as credenciais (payload > ambiente > default) e cria o gate;
//     as seguintes devolvem o mesmo gerenciador e ignoram os argumentos
//  2. Em volta de cada chamada à API: release, ok := m.Acquire(ctx);
//     defer release()
//  3. Monitoração lê m.Status() (ou GET /status via StatusHandler)
//
// Variáveis de ambiente: REPLICATE_API_TOKEN e REPLICATE_GLOBAL_MAX_CONCURRENT
// (default 60; valor inválido cai no default com warning).
package concurrency

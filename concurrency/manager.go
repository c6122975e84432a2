package concurrency

import (
	"context"
	"os"
	"sync"
	"time"

	"replicate-gate/concurrency/application"
	"replicate-gate/concurrency/domain"
	"replicate-gate/concurrency/infra"

	log "github.com/sirupsen/logrus"
)

// Manager é o dono único do trio (credenciais, gate, estatísticas) da conta.
//
// Normalmente se usa o singleton de processo via GetOrCreate; NewManager
// existe para injeção explícita em testes e composições.
type Manager struct {
	mu    sync.Mutex
	creds domain.Credentials
	gate  domain.Gate
	stats usageStats

	statsStore domain.StatsStore // opcional, best-effort
	instance   string            // rótulo deste processo nos eventos publicados
}

type usageStats struct {
	totalRequests        int64
	concurrentRequests   int
	maxConcurrentReached int64
	createdAt            time.Time
}

type Option func(*Manager)

// WithStatsStore publica cada evento de admissão em um StatsStore.
// Erros de publicação são ignorados (best-effort, não derruba a chamada).
func WithStatsStore(s domain.StatsStore) Option {
	return func(m *Manager) { m.statsStore = s }
}

// WithInstanceLabel rotula os eventos publicados com o nome deste processo
// (útil quando vários processos dividem a conta).
func WithInstanceLabel(name string) Option {
	return func(m *Manager) { m.instance = name }
}

// WithGate injeta uma implementação de gate (testes).
func WithGate(g domain.Gate) Option {
	return func(m *Manager) { m.gate = g }
}

// NewManager resolve credenciais (payload > ambiente > default) e cria o gate
// com a capacidade resolvida. Falha apenas por configuração: token ausente em
// todas as fontes.
func NewManager(payloadToken string, payloadLimit int, opts ...Option) (*Manager, error) {
	creds, err := application.ResolveCredentials(payloadToken, payloadLimit)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		creds: creds,
		stats: usageStats{createdAt: time.Now()},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.gate == nil {
		m.gate = infra.NewChanGate(creds.MaxConcurrent)
	}

	log.WithFields(log.Fields{
		"max_concurrent": creds.MaxConcurrent,
		"api_token":      creds.MaskedToken(),
	}).Info("global concurrency manager initialized")

	return m, nil
}

// Gate expõe o primitivo de admissão compartilhado.
// Prefira Acquire, que centraliza a contagem de estatísticas; Gate existe para
// quem precisa compor o primitivo cru (ex: AdmissionService com timeout).
func (m *Manager) Gate() domain.Gate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gate
}

// Credentials devolve uma cópia das credenciais resolvidas.
func (m *Manager) Credentials() domain.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds
}

// Acquire pede uma vaga global e atualiza as estatísticas centralizadas.
//
// Retorna (release, ok). O release é seguro contra chamada dupla e precisa
// rodar em todos os caminhos de saída — o padrão de uso é:
//
//	release, ok := m.Acquire(ctx)
//	if !ok { return ctx.Err() }
//	defer release()
//	// chamada à API
//
// Se o ctx encerra durante a espera, nada é contabilizado como admissão.
func (m *Manager) Acquire(ctx context.Context) (func(), bool) {
	// referência local: UpdateCredentials pode trocar o gate no meio
	gate := m.Gate()

	release, ok := gate.Acquire(ctx)
	if !ok {
		m.publish(ctx, domain.OutcomeDenied)
		return nil, false
	}

	m.recordAdmission()
	m.publish(ctx, domain.OutcomeAdmitted)

	var once sync.Once
	return func() {
		once.Do(func() {
			release()
			m.recordRelease()
			m.publish(context.Background(), domain.OutcomeReleased)
		})
	}, true
}

func (m *Manager) recordAdmission() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.totalRequests++
	m.stats.concurrentRequests++
	if int64(m.stats.concurrentRequests) > m.stats.maxConcurrentReached {
		m.stats.maxConcurrentReached = int64(m.stats.concurrentRequests)
	}
}

func (m *Manager) recordRelease() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats.concurrentRequests > 0 {
		m.stats.concurrentRequests--
	}
}

func (m *Manager) publish(ctx context.Context, out domain.Outcome) {
	if m.statsStore == nil {
		return
	}
	_ = m.statsStore.Record(ctx, domain.StatsEvent{
		Outcome: out,
		Worker:  m.instance,
		At:      time.Now(),
	})
}

// Status devolve o snapshot estável consumido por monitoração.
// Leitura concorrente-segura; os contadores são aproximações consistentes o
// suficiente para monitorar (sem ponto de sincronização com acquire/release).
func (m *Manager) Status() domain.Status {
	m.mu.Lock()
	gate := m.gate
	total := m.stats.totalRequests
	peak := m.stats.maxConcurrentReached
	created := m.stats.createdAt
	m.mu.Unlock()

	snap := gate.Snapshot()
	util := 0.0
	if snap.Capacity > 0 {
		util = float64(snap.InUse) / float64(snap.Capacity) * 100
	}

	return domain.Status{
		MaxConcurrent:        snap.Capacity,
		CurrentConcurrent:    snap.InUse,
		AvailableSlots:       snap.Available(),
		UtilizationPercent:   util,
		TotalRequests:        total,
		MaxConcurrentReached: peak,
		UptimeSeconds:        time.Since(created).Seconds(),
	}
}

// UpdateCredentials é uma operação administrativa e PERIGOSA.
//
// Trocar o limite recria o gate do zero (contagem zerada): as aquisições em
// andamento deixam de ser contabilizadas e um release pendente devolve vaga ao
// gate antigo, não ao novo. Drene o trabalho em voo antes de chamar. O hazard
// é anunciado em log, nunca corrigido silenciosamente.
//
// Zero-values deixam o campo correspondente como está.
func (m *Manager) UpdateCredentials(token string, limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token != "" {
		m.creds.APIToken = token
		_ = os.Setenv(application.EnvAPIToken, token)
		log.WithField("api_token", m.creds.MaskedToken()).
			Warn("api token replaced at runtime")
	}

	if limit > 0 && limit != m.creds.MaxConcurrent {
		old := m.creds.MaxConcurrent
		m.creds.MaxConcurrent = limit
		m.gate = infra.NewChanGate(limit)
		log.WithFields(log.Fields{"old": old, "new": limit}).
			Warn("global gate recreated with new capacity; in-flight acquisitions are no longer accounted for")
	}
}

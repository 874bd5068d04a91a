package netscan

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wakelan/wakelan/internal/model"
)

// DefaultEnrichWorkers bounds how many locate+probe round-trips run at once
// when enriching a list, so a large registry doesn't flood the local
// network or the process table with ping subprocesses.
const DefaultEnrichWorkers = 8

// Enricher annotates equipo records with their live {ip_address, estado}
// by composing the Locator and the Prober. Enrichment is performed fresh on
// every call and never cached.
type Enricher struct {
	locator Locator
	prober  Prober
	workers int
	logger  *slog.Logger
}

func NewEnricher(locator Locator, prober Prober, workers int, logger *slog.Logger) *Enricher {
	if workers <= 0 {
		workers = DefaultEnrichWorkers
	}
	return &Enricher{
		locator: locator,
		prober:  prober,
		workers: workers,
		logger:  logger,
	}
}

// Enrich resolves one equipo's current IP and state. No ARP entry yields
// {unavailable, unknown}; a resolved IP is probed once and yields online or
// offline.
func (e *Enricher) Enrich(ctx context.Context, eq model.Equipo) model.EquipoStatus {
	st := eq.Status()

	ip, ok := e.locator.Lookup(ctx, eq.MACAddress)
	if !ok {
		return st
	}

	st.IPAddress = ip
	if e.prober.Reachable(ctx, ip) {
		st.Estado = model.StateOnline
	} else {
		st.Estado = model.StateOffline
	}
	return st
}

// EnrichAll enriches a list of equipos concurrently on a bounded worker
// pool. The returned slice preserves the input enumeration order regardless
// of probe completion order.
func (e *Enricher) EnrichAll(ctx context.Context, equipos []model.Equipo) []model.EquipoStatus {
	results := make([]model.EquipoStatus, len(equipos))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, eq := range equipos {
		wg.Add(1)
		go func(i int, eq model.Equipo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.Enrich(ctx, eq)
		}(i, eq)
	}
	wg.Wait()

	return results
}

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	// WagersPlaced counts wagers accepted into the ledger.
	WagersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiveaside_wagers_placed_total",
		Help: "Total number of wagers placed",
	})

	// SettlementsCompleted counts matches settled successfully.
	SettlementsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiveaside_settlements_total",
		Help: "Total number of matches settled",
	})

	// SettlementFailures counts settlement attempts that errored mid-flight.
	SettlementFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiveaside_settlement_failures_total",
		Help: "Total number of failed settlement attempts",
	})

	// SettlementPreconditionFailures counts settlements refused up front,
	// e.g. a feed event with a missing or invalid winner.
	SettlementPreconditionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiveaside_settlement_precondition_failures_total",
		Help: "Total number of settlement requests refused by precondition checks",
	})

	// FeedEvents counts match feed events by result of processing.
	FeedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiveaside_feed_events_total",
		Help: "Total number of match feed events processed",
	}, []string{"status"})

	// PayoutTotal tracks naira paid out to winners.
	PayoutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiveaside_payout_naira_total",
		Help: "Total naira paid out to winning wagers",
	})

	// FeeTotal tracks naira collected as platform fees.
	FeeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiveaside_fee_naira_total",
		Help: "Total naira collected as platform fees",
	})
)

// HealthFunc reports whether the service's dependencies are reachable.
type HealthFunc func(ctx context.Context) error

// StartServer exposes /metrics and /healthz on the given port. It returns the
// server so the caller can shut it down.
func StartServer(port string, health HealthFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if health != nil {
			if err := health(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintf(w, "unhealthy: %v", err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		log.WithField("port", port).Info("Metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Metrics server stopped")
		}
	}()

	return srv
}

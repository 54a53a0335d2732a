// Package metrics exposes server counters in Prometheus format.
package metrics

import (
	"errors"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/StoreStation/TimberCraft/pkg/chop"
)

const namespace = "timbercraft"

// Recorder holds the server's collectors in its own registry, so several
// servers (and tests) never collide on the default registerer.
type Recorder struct {
	registry *prometheus.Registry

	chops         *prometheus.CounterVec
	suppressed    prometheus.Counter
	logsFelled    prometheus.Counter
	durability    prometheus.Counter
	toolsBroken   prometheus.Counter
	fallingBlocks prometheus.Counter
	leavesDecayed prometheus.Counter
	blocksBroken  prometheus.Counter
	playersOnline prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		chops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chops_total",
			Help:      "Tree chops attempted, by chop mode.",
		}, []string{"mode"}),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chops_suppressed_total",
			Help:      "Chops cancelled because no natural leaves touched the tree.",
		}),
		logsFelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logs_felled_total",
			Help:      "Logs removed by chops, the origin log excluded.",
		}),
		durability: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_durability_used_total",
			Help:      "Durability points consumed by chops.",
		}),
		toolsBroken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tools_broken_total",
			Help:      "Tools that broke during a chop.",
		}),
		fallingBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "falling_blocks_total",
			Help:      "Falling block entities spawned.",
		}),
		leavesDecayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaves_decayed_total",
			Help:      "Leaves removed by fast leaf decay.",
		}),
		blocksBroken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_broken_total",
			Help:      "Blocks broken by players.",
		}),
		playersOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_online",
			Help:      "Players currently in the play state.",
		}),
	}
	r.registry.MustRegister(
		r.chops, r.suppressed, r.logsFelled, r.durability, r.toolsBroken,
		r.fallingBlocks, r.leavesDecayed, r.blocksBroken, r.playersOnline,
	)
	return r
}

// ObserveChop records the outcome of one chop. Skipped chops are ignored.
func (r *Recorder) ObserveChop(res chop.Result) {
	if r == nil || res.Skipped {
		return
	}
	r.chops.WithLabelValues(res.Mode.String()).Inc()
	if res.Suppressed {
		r.suppressed.Inc()
	}
	r.logsFelled.Add(float64(res.Removed))
	r.durability.Add(float64(res.Durability))
	if res.ToolBroken {
		r.toolsBroken.Inc()
	}
}

// FallingBlockSpawned counts one falling block entity.
func (r *Recorder) FallingBlockSpawned() {
	if r != nil {
		r.fallingBlocks.Inc()
	}
}

// LeavesDecayed counts leaves removed by decay.
func (r *Recorder) LeavesDecayed(n int) {
	if r != nil {
		r.leavesDecayed.Add(float64(n))
	}
}

// BlockBroken counts a block broken by a player.
func (r *Recorder) BlockBroken() {
	if r != nil {
		r.blocksBroken.Inc()
	}
}

// SetPlayersOnline updates the online player gauge.
func (r *Recorder) SetPlayersOnline(n int) {
	if r != nil {
		r.playersOnline.Set(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on addr in the background.
// The caller shuts it down with Close or Shutdown.
func (r *Recorder) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Printf("Metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server error: %v", err)
		}
	}()
	return srv
}

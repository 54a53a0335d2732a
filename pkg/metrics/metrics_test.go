package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoreStation/TimberCraft/pkg/chop"
)

func TestObserveChop(t *testing.T) {
	r := New()
	r.ObserveChop(chop.Result{Mode: chop.FullChop, Removed: 7, Durability: 7, ToolBroken: true})
	r.ObserveChop(chop.Result{Mode: chop.FullChop, Suppressed: true})
	r.ObserveChop(chop.Result{Mode: chop.GravityChop, Removed: 3})
	r.ObserveChop(chop.Result{Mode: chop.VanillaChop, Skipped: true})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.chops.WithLabelValues("FULL_CHOP")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.chops.WithLabelValues("GRAVITY_CHOP")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.chops.WithLabelValues("VANILLA_CHOP")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.suppressed))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.logsFelled))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.durability))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.toolsBroken))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveChop(chop.Result{Removed: 1})
		r.FallingBlockSpawned()
		r.LeavesDecayed(3)
		r.BlockBroken()
		r.SetPlayersOnline(2)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.LeavesDecayed(4)
	r.SetPlayersOnline(2)
	r.FallingBlockSpawned()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "timbercraft_leaves_decayed_total 4")
	assert.Contains(t, string(body), "timbercraft_players_online 2")
	assert.Contains(t, string(body), "timbercraft_falling_blocks_total 1")
}

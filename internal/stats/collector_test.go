package stats_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/mail-router/internal/core"
	"github.com/mikey/mail-router/internal/stats"
)

func TestCollectorCounts(t *testing.T) {
	collector := stats.NewCollector()

	collector.RecordDecision(core.QueuePreAlert)
	collector.RecordDecision(core.QueuePreAlert)
	collector.RecordDecision(core.QueueShipmentInitiation)
	collector.RecordError()

	snapshot := collector.Snapshot()
	assert.Equal(t, uint64(3), snapshot.TotalProcessed)
	assert.Equal(t, uint64(2), snapshot.PerQueue[core.QueuePreAlert])
	assert.Equal(t, uint64(1), snapshot.PerQueue[core.QueueShipmentInitiation])
	assert.Equal(t, uint64(1), snapshot.ProcessingErrors)
}

func TestCollectorSnapshotIsACopy(t *testing.T) {
	collector := stats.NewCollector()
	collector.RecordDecision(core.QueuePreAlert)

	snapshot := collector.Snapshot()
	snapshot.PerQueue[core.QueuePreAlert] = 100

	assert.Equal(t, uint64(1), collector.Snapshot().PerQueue[core.QueuePreAlert])
}

func TestCollectorConcurrentRecording(t *testing.T) {
	collector := stats.NewCollector()

	const workers = 10
	const perWorker = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				collector.RecordDecision(core.QueueArrivalNotice)
				collector.RecordError()
			}
		}()
	}
	wg.Wait()

	snapshot := collector.Snapshot()
	assert.Equal(t, uint64(workers*perWorker), snapshot.TotalProcessed)
	assert.Equal(t, uint64(workers*perWorker), snapshot.PerQueue[core.QueueArrivalNotice])
	assert.Equal(t, uint64(workers*perWorker), snapshot.ProcessingErrors)
}

func TestCollectorMetricsEndpoint(t *testing.T) {
	collector := stats.NewCollector()
	collector.RecordDecision(core.QueuePreAlert)
	collector.RecordError()

	recorder := httptest.NewRecorder()
	collector.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, `mail_router_documents_routed_total{queue="RAFT_PreAlert"} 1`)
	assert.Contains(t, body, "mail_router_processing_errors_total 1")
}

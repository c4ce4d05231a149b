package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// sample returns the summed counter, gauge or histogram-count value of a family.
func sample(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		total := 0.0
		for _, m := range f.GetMetric() {
			switch {
			case m.Counter != nil:
				total += m.GetCounter().GetValue()
			case m.Gauge != nil:
				total += m.GetGauge().GetValue()
			case m.Histogram != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		return total
	}
	return -1
}

// withManager swaps the global manager for one on a fresh registry.
func withManager(opts ...Option) (*prometheus.Registry, func()) {
	reg := prometheus.NewRegistry()
	prev := globalManager
	globalManager = NewManager(append(opts, WithPrometheusRegistry(reg))...)
	return reg, func() { globalManager = prev }
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should use the forecast namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "leaguecast")
				So(manager.subsystem, ShouldEqual, "forecast")
				So(manager.enabled, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sim"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithRefreshInterval(time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "sim")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
				So(manager.refreshInterval, ShouldEqual, time.Second)
				So(manager.constLabels["env"], ShouldEqual, "test")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a fresh global manager", t, func() {
		reg, restore := withManager()
		defer restore()

		Convey("When recording job metrics", func() {
			RecordJobSubmitted()
			RecordJobSubmitted()
			RecordJobDuplicate()
			RecordJobCompleted(12)
			RecordJobFailed()

			Convey("Then the counters should move", func() {
				So(sample(reg, "leaguecast_forecast_jobs_submitted_total"), ShouldEqual, 2)
				So(sample(reg, "leaguecast_forecast_jobs_duplicate_total"), ShouldEqual, 1)
				So(sample(reg, "leaguecast_forecast_jobs_completed_total"), ShouldEqual, 1)
				So(sample(reg, "leaguecast_forecast_job_duration_milliseconds"), ShouldEqual, 1)
				So(sample(reg, "leaguecast_forecast_jobs_failed_total"), ShouldEqual, 1)
			})
		})

		Convey("When recording batches", func() {
			RecordBatch("Serie A", 100, 5)
			RecordBatch("Serie A", 50, 3)
			RecordBatch("Serie B", 100, 4)

			Convey("Then worlds are summed per league", func() {
				So(sample(reg, "leaguecast_forecast_simulated_worlds_total"), ShouldEqual, 250)
				So(sample(reg, "leaguecast_forecast_batches_total"), ShouldEqual, 3)
			})
		})

		Convey("When updating the champion gauge twice for one league", func() {
			UpdateChampionProbability("L", "A", 0.4)
			UpdateChampionProbability("L", "B", 0.6)

			Convey("Then only the latest champion is kept", func() {
				So(sample(reg, "leaguecast_forecast_champion_probability"), ShouldEqual, 0.6)
			})
		})

		Convey("When recording queue, worker, http and system metrics", func() {
			UpdateQueueSize(3)
			UpdateQueueCapacity(10)
			UpdateQueueUtilization(0.3)
			RecordQueueEnqueue()
			RecordQueueDequeue()
			RecordQueueEnqueueError()
			UpdateWorkerActiveCount(4)
			RecordWorkerProcessingLatency(8)
			RecordWorkerError()
			RecordHTTPRequest("/forecasts", "POST", "202")
			RecordHTTPRequestDuration("/forecasts", "POST", "202", 1.5)
			RecordErrorByComponent("worker", "forecast_error")
			RecordMatchesPersisted(380)
			RecordPersistenceError()
			RecordNotification("amqp", "ok")
			UpdateWebsocketClients(2)
			UpdateDatasetSize(2, 760)
			CollectSystemMetrics()

			Convey("Then they should be exported", func() {
				So(sample(reg, "leaguecast_forecast_queue_size"), ShouldEqual, 3)
				So(sample(reg, "leaguecast_forecast_queue_capacity"), ShouldEqual, 10)
				So(sample(reg, "leaguecast_forecast_worker_active_count"), ShouldEqual, 4)
				So(sample(reg, "leaguecast_forecast_http_requests_total"), ShouldEqual, 1)
				So(sample(reg, "leaguecast_forecast_matches_persisted_total"), ShouldEqual, 380)
				So(sample(reg, "leaguecast_forecast_notifications_total"), ShouldEqual, 1)
				So(sample(reg, "leaguecast_forecast_matches_loaded"), ShouldEqual, 760)
				So(sample(reg, "leaguecast_forecast_system_goroutine_count"), ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		reg, restore := withManager(WithMetricsEnabled(false))
		defer restore()

		Convey("When recording", func() {
			RecordJobSubmitted()

			Convey("Then nothing is collected", func() {
				So(sample(reg, "leaguecast_forecast_jobs_submitted_total"), ShouldEqual, 0)
			})
		})
	})

	Convey("Given the global registry", t, func() {
		So(GetRegistry(), ShouldNotBeNil)
	})
}

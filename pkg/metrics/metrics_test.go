package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.operations.WithLabelValues("place_bid", "ok").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_operations_total"], ShouldBeTrue)
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given configured naming and buckets", t, func() {
		prevManager, prevRegistry := globalManager, customRegistry
		Reset(func() { globalManager, customRegistry = prevManager, prevRegistry })

		reg := Configure(WithNamespace("bids"), WithSubsystem("api"), WithHistogramBuckets([]float64{5, 50}))

		Convey("When metrics are recorded", func() {
			RecordOperation("place_bid", "ok")
			RecordRemoteCall("place_bid", "ok", 12)

			Convey("Then they land on the new registry under the new names", func() {
				So(GetRegistry(), ShouldEqual, reg)
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				buckets := -1
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
					if f.GetName() == "bids_api_remote_call_duration_milliseconds" {
						buckets = len(f.GetMetric()[0].GetHistogram().GetBucket())
					}
				}
				So(names["bids_api_operations_total"], ShouldBeTrue)
				So(names["intervue_engine_operations_total"], ShouldBeFalse)
				So(buckets, ShouldEqual, 2)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When engine metrics are recorded", func() {
			before := testutil.ToFloat64(globalManager.operations.WithLabelValues("apply", "ok"))
			RecordOperation("apply", "ok")
			RecordToggleRollback()
			RecordFeedbackTransition("SCHEDULED")
			RecordInflightRejection("place_bid")
			UpdateActiveSessions(3)

			Convey("Then counters and gauges move", func() {
				So(testutil.ToFloat64(globalManager.operations.WithLabelValues("apply", "ok")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.activeSessions), ShouldEqual, 3)
			})
		})

		Convey("When client, HTTP, queue and worker metrics are recorded", func() {
			So(func() {
				RecordRemoteCall("place_bid", "ok", 12)
				RecordRemoteError("list_biddable", "availability_not_configured")
				RecordHTTPRequest("/bids", "POST", "201")
				RecordHTTPRequestDuration("/bids", "POST", "201", 15)
				UpdateQueueCapacity(100)
				UpdateQueueSize(5)
				UpdateQueueUtilization(0.05)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(1)
				UpdateWorkerCount(2)
				UpdateWorkerActiveCount(2)
				RecordWorkerProcessingLatency(3)
				RecordWorkerError()
				RecordJournalWrite("memory")
				RecordErrorByComponent("journal", "queue_full")
			}, ShouldNotPanic)
		})

		Convey("When the registry is requested", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

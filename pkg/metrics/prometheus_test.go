package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	convey.Convey("Given manager options", t, func() {
		convey.Convey("When constructed with defaults on a fresh registry", func() {
			m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			convey.Convey("Then the default identity is applied", func() {
				convey.So(m, convey.ShouldNotBeNil)
				convey.So(m.namespace, convey.ShouldEqual, "storyarc")
				convey.So(m.subsystem, convey.ShouldEqual, "segmenter")
				convey.So(m.enabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When constructed with overrides", func() {
			m := NewManager(
				WithPrometheusRegistry(prometheus.NewRegistry()),
				WithNamespace("harness"),
				WithSubsystem("queue"),
				WithHistogramBuckets([]float64{0.1, 1, 10}),
				WithMetricsEnabled(false),
			)

			convey.Convey("Then the overrides are applied", func() {
				convey.So(m.namespace, convey.ShouldEqual, "harness")
				convey.So(m.subsystem, convey.ShouldEqual, "queue")
				convey.So(m.histogramBuckets, convey.ShouldResemble, []float64{0.1, 1, 10})
				convey.So(m.enabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When options carry zero values", func() {
			m := NewManager(
				WithPrometheusRegistry(prometheus.NewRegistry()),
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
			)

			convey.Convey("Then the defaults survive", func() {
				convey.So(m.namespace, convey.ShouldEqual, "storyarc")
				convey.So(m.subsystem, convey.ShouldEqual, "segmenter")
				convey.So(m.histogramBuckets, convey.ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	convey.Convey("Given the global manager", t, func() {
		convey.Convey("Then the package-level recorders do not panic", func() {
			convey.So(func() {
				RecordGameSegmented("unweighted")
				RecordGameSegmented("weighted")
				RecordSegmentationError()
				RecordSegmentationLatency(1.5)
				RecordBlocksPerGame(5)
				RecordAllocationShortfall()
				RecordGuardrailViolation()
				UpdateQueueSize(3)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.03)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueFullDrop()
				UpdateWorkerActiveCount(4)
				RecordWorkerLatency(2.5)
				RecordWorkerError()
				UpdateGamesTracked(10)
				RecordRankingUpdate()
			}, convey.ShouldNotPanic)
		})

		convey.Convey("Then the custom registry gathers the engine metrics", func() {
			families, err := GetRegistry().Gather()
			convey.So(err, convey.ShouldBeNil)

			names := make(map[string]bool, len(families))
			for _, f := range families {
				names[f.GetName()] = true
			}
			convey.So(names["storyarc_segmenter_games_segmented_total"], convey.ShouldBeTrue)
			convey.So(names["storyarc_segmenter_blocks_per_game"], convey.ShouldBeTrue)
			convey.So(names["storyarc_segmenter_queue_size"], convey.ShouldBeTrue)
		})
	})
}

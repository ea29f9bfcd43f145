package image

// ProgressSink receives ordered stage notifications from the pipeline.
//
// Percentages are advisory and non-decreasing; the stage label carries the
// interesting signal (in particular, degradations like "Geometry
// synthesized" are surfaced here rather than as errors). Sinks must be cheap
// and must not call back into the pipeline.
type ProgressSink interface {
	Progress(stage string, percent int)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(stage string, percent int)

func (f ProgressFunc) Progress(stage string, percent int) {
	f(stage, percent)
}

// NopProgress discards all notifications. Used when the caller (tests,
// mostly) does not care about progress.
var NopProgress ProgressSink = ProgressFunc(func(string, int) {})

// monotonicSink clamps percentages so consumers always observe a
// non-decreasing sequence, whatever the stages report.
type monotonicSink struct {
	inner ProgressSink
	last  int
}

func (m *monotonicSink) Progress(stage string, percent int) {
	if percent < m.last {
		percent = m.last
	}
	if percent > 100 {
		percent = 100
	}
	m.last = percent
	m.inner.Progress(stage, percent)
}

// Stage labels, in pipeline order. The set is fixed; consumers may key
// behavior (such as a "degraded" badge) off specific labels.
const (
	StageValidating  = "Validating image"
	StageGeometry    = "Reading volume geometry"
	StageSynthesized = "Geometry synthesized"
	StageScanning    = "Scanning metadata region"
	StageWalking     = "Walking directory index"
	StageSynthetic   = "Generating illustrative structure"
	StageFingerprint = "Computing fingerprints"
	StageHierarchy   = "Building hierarchy"
	StageComplete    = "Complete"
)

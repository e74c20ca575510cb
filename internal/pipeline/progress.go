package pipeline

// Progress is a one-way notification emitted after each sampled frame is
// aggregated. Sends never block the pipeline: when the observer's channel
// is full the event is dropped.
type Progress struct {
	FrameIndex int
	Timestamp  float64
	// Detections is the running session total.
	Detections int
}

func notify(ch chan<- Progress, p Progress) {
	if ch == nil {
		return
	}
	select {
	case ch <- p:
	default:
	}
}

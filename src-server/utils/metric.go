package utils

// Latency samples in microseconds, consumed by the metric package
type Metric struct {
	DatabaseRead       chan float64
	DatabaseWrite      chan float64
	DiscordSendMessage chan float64
	CaldavRequest      chan float64
	// result of the last scheduled CalDAV connection check
	CaldavUp chan bool
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:       make(chan float64, 16),
		DatabaseWrite:      make(chan float64, 16),
		DiscordSendMessage: make(chan float64, 16),
		CaldavRequest:      make(chan float64, 16),
		CaldavUp:           make(chan bool, 1),
	}
}

// Send a sample without blocking; it is dropped when the buffer is full
func Send[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AuthAttempts counts login attempts by role and outcome (ok|denied|error).
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "karaoke_auth_attempts_total", Help: "Login attempts"},
		[]string{"role", "outcome"},
	)
	// QueueTransitions counts queue item moves by target status.
	QueueTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "karaoke_queue_transitions_total", Help: "Queue item status changes"},
		[]string{"status"},
	)
	// TableSessions counts table registry writes by operation.
	TableSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "karaoke_table_sessions_total", Help: "Table session registry writes"},
		[]string{"op"},
	)
	// SongUploads counts catalog uploads by file format.
	SongUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "karaoke_song_uploads_total", Help: "Songs added to the catalog"},
		[]string{"format"},
	)
	// UploadDuration observes how long writing song media to storage takes.
	UploadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "karaoke_song_upload_duration_seconds",
			Help:    "Song media upload time",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)
)

func init() {
	prometheus.MustRegister(AuthAttempts, QueueTransitions, TableSessions, SongUploads, UploadDuration)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

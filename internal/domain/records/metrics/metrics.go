package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics observa el workflow de registros: altas por tipo de evento
// y duración de las transiciones por status destino.
type Metrics struct {
	RecordsCreated     *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec
}

// New registra las métricas del módulo en el registerer dado.
// Recibirlo explícito evita el registro global (y los panics por
// doble registro en tests).
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civil_registry_records_created_total",
			Help: "Total number of vital event records created, by event type",
		}, []string{"event_type"}),
		TransitionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civil_registry_transition_duration_seconds",
			Help:    "Duration of status transitions, by target status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"status"}),
	}
}

// IncRecordCreated registra un alta exitosa.
func (m *Metrics) IncRecordCreated(eventType string) {
	m.RecordsCreated.WithLabelValues(eventType).Inc()
}

// ObserveTransition registra la duración de una transición.
// Llamar con el time.Now() del inicio de la operación.
func (m *Metrics) ObserveTransition(status string, start time.Time) {
	m.TransitionDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

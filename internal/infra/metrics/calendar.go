package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(allowedDay, cardsByState, opensTotal, storeLoadsTotal, rolloversTotal)
}

var (
	allowedDay = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "advent_allowed_day",
		Help: "Day that can be opened right now; 0 when the calendar is closed.",
	})

	cardsByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "advent_cards",
			Help: "Cards per state on the anonymous board at the last refresh.",
		},
		[]string{"state"},
	)

	opensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advent_opens_total",
			Help: "Open actions by outcome (accepted/stale/duplicate/failed).",
		},
		[]string{"result"},
	)

	storeLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advent_store_loads_total",
			Help: "Opened-days loads by driver and result (hit/miss/corrupt/error).",
		},
		[]string{"driver", "result"},
	)

	rolloversTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "advent_day_rollovers_total",
		Help: "Number of times the allowed day changed while running.",
	})
)

// SetAllowedDay records the current allowed day (0 = closed).
func SetAllowedDay(day int) { allowedDay.Set(float64(day)) }

func SetCards(state string, n int) {
	cardsByState.WithLabelValues(norm(state)).Set(float64(n))
}

func IncOpen(result string) { opensTotal.WithLabelValues(norm(result)).Inc() }

func IncStoreLoad(driver, result string) {
	storeLoadsTotal.WithLabelValues(norm(driver), norm(result)).Inc()
}

func IncRollover() { rolloversTotal.Inc() }

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_messages_processed_total",
			Help: "Messages processed by resolved intent and how the intent was obtained",
		},
		[]string{"intent", "source"},
	)

	MessageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_message_duration_seconds",
			Help:    "Time spent processing one customer message",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"escalated"},
	)

	Escalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_escalations_total",
			Help: "External model escalations by outcome",
		},
		[]string{"outcome"},
	)

	LLMTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_llm_tokens_total",
			Help: "Tokens consumed by escalation calls by model and direction",
		},
		[]string{"model", "direction"},
	)

	LLMCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_llm_cost_usd_total",
			Help: "Estimated escalation spend in USD by model",
		},
		[]string{"model"},
	)

	CatalogLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_catalog_loads_total",
			Help: "Product catalog load attempts by result",
		},
		[]string{"result"},
	)

	MemoryRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_memory_records",
			Help: "Customer memory records held in process",
		},
	)

	MemoryEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_memory_evictions_total",
			Help: "Customer memory records evicted by reason",
		},
		[]string{"reason"},
	)

	Panics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_recovered_panics_total",
			Help: "Unexpected failures turned into a safe reply",
		},
	)
)

// Package metrics holds the domain Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batik_order_transitions_total",
			Help: "Order status transitions by target status.",
		},
		[]string{"to"},
	)

	ChatMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batik_chat_messages_total",
			Help: "Chat messages appended, by origin (user or system).",
		},
		[]string{"origin"},
	)

	// TranslationLookups counts translate requests by outcome: hit, miss or error.
	TranslationLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batik_translation_lookups_total",
			Help: "Translation requests by cache outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(OrderTransitions, ChatMessages, TranslationLookups)
}

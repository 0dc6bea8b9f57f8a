package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Command Metrics
var (
	CommandsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_handled_total",
			Help: "Total number of chat commands handled",
		},
		[]string{"command", "outcome"},
	)
)

// Business Metrics
var (
	ChestsSpawned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chests_spawned_total",
			Help: "Total number of chests spawned",
		},
		[]string{"rarity"},
	)

	ChestsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chests_opened_total",
			Help: "Total number of first-time chest opens",
		},
	)

	ItemsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "items_claimed_total",
			Help: "Total number of items claimed into inventories",
		},
	)

	ItemsScrapped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "items_scrapped_total",
			Help: "Total number of items scrapped for points",
		},
	)

	KeysSpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keys_spent_total",
			Help: "Total keys spent opening and force-dropping chests",
		},
	)

	KeysGranted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keys_granted_total",
			Help: "Total keys granted by admins and redemptions",
		},
	)
)

// RecordCommand tracks one handled command and its outcome ("ok" or "error").
func RecordCommand(command, outcome string) {
	CommandsHandled.WithLabelValues(command, outcome).Inc()
}

// RecordChestSpawned tracks a spawned chest by rarity.
func RecordChestSpawned(rarity string) {
	ChestsSpawned.WithLabelValues(rarity).Inc()
}

// RecordChestOpened tracks a first-time open.
func RecordChestOpened() {
	ChestsOpened.Inc()
}

// RecordItemsClaimed tracks claimed items.
func RecordItemsClaimed(n int) {
	ItemsClaimed.Add(float64(n))
}

// RecordItemsScrapped tracks scrapped items.
func RecordItemsScrapped(n int) {
	ItemsScrapped.Add(float64(n))
}

// RecordKeysSpent tracks spent keys.
func RecordKeysSpent(n int) {
	KeysSpent.Add(float64(n))
}

// RecordKeysGranted tracks granted keys.
func RecordKeysGranted(n int) {
	KeysGranted.Add(float64(n))
}

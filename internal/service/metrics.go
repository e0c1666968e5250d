package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pairingAttempts считает попытки сопряжения по исходам.
// Исходы: issued, invalid_number, in_progress, storage_error,
// provider_unavailable, pairing_rejected.
var pairingAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pairing",
	Name:      "attempts_total",
	Help:      "Pairing attempts by outcome.",
}, []string{"outcome"})

// sessionTeardowns считает срабатывания отложенного teardown.
var sessionTeardowns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pairing",
	Name:      "session_teardowns_total",
	Help:      "Session teardowns by trigger (timer, shutdown).",
}, []string{"trigger"})

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Métriques métier
	LeadsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imob_leads_created_total",
		Help: "Nombre de leads créés, par source",
	}, []string{"source"})

	LeadTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imob_lead_transitions_total",
		Help: "Changements de statut des leads",
	}, []string{"from", "to"})

	LeadConversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imob_lead_conversions_total",
		Help: "Leads convertis en clients, par type de client",
	}, []string{"client_type"})

	TaskStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imob_task_status_changes_total",
		Help: "Changements de statut des tâches",
	}, []string{"status"})

	UserOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imob_user_operations_total",
		Help: "Opérations d'administration des utilisateurs",
	}, []string{"operation"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imob_login_attempts_total",
		Help: "Tentatives de connexion",
	}, []string{"result"})

	// Métriques d'infrastructure
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imob_events_published_total",
		Help: "Événements publiés sur la file",
	}, []string{"type", "result"})

	QueueDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imob_queue_dropped_total",
		Help: "Messages abandonnés car la file d'un abonné était pleine",
	}, []string{"subject"})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imob_notifications_sent_total",
		Help: "Notifications envoyées",
	}, []string{"channel", "result"})

	StorageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "imob_storage_latency_seconds",
		Help:    "Latence des lectures et écritures de snapshots",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver", "operation"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "imob_websocket_clients",
		Help: "Clients connectés au flux d'événements",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imob_http_requests_total",
		Help: "Requêtes HTTP servies",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "imob_http_request_duration_seconds",
		Help:    "Durée des requêtes HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

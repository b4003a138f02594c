// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	ClientsCreated      = expvar.NewInt("clients_created")
	ClientsUpdated      = expvar.NewInt("clients_updated")
	ClientsDeleted      = expvar.NewInt("clients_deleted")
	ClientsImported     = expvar.NewInt("clients_imported")
	IngestionsTotal     = expvar.NewInt("ingestions_total")
	IngestionErrors     = expvar.NewInt("ingestion_errors")
	CacheHits           = expvar.NewInt("cache_hits")
	CacheMisses         = expvar.NewInt("cache_misses")
	MirrorWrites        = expvar.NewInt("mirror_writes")
	MirrorFailures      = expvar.NewInt("mirror_failures")
	WebhooksSent        = expvar.NewInt("webhooks_sent")
	WebhookFailures     = expvar.NewInt("webhook_failures")
	AuditEntriesWritten = expvar.NewInt("audit_entries_written")
)

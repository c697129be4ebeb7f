package metrics

import "expvar"

var (
	ReconcileRuns    = expvar.NewInt("reconcile_runs")
	ReconcileErrors  = expvar.NewInt("reconcile_errors")
	ReconcileNoops   = expvar.NewInt("reconcile_noops")
	QuoteFetchErrors = expvar.NewInt("quote_fetch_errors")
	OrdersSent       = expvar.NewInt("orders_sent")
	CancelFailures   = expvar.NewInt("cancel_failures")
)

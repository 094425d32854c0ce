package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Attendance
	MetricCheckInLatency   = "attendance.check_in_latency"
	MetricGeofenceMissRate = "attendance.geofence_miss_rate"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricRequestsDecided = "business.requests_decided"
	MetricPayrollRuns     = "business.payroll_runs"
)

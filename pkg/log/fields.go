package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Service
	FieldService = "service"

	// gRPC
	FieldGRPCMethod = "grpc_method"
	FieldGRPCCode   = "grpc_code"

	// Generators
	FieldGenerator    = "generator"
	FieldIDType       = "id_type"
	FieldCount        = "count"
	FieldDatacenterID = "datacenter_id"
	FieldWorkerID     = "worker_id"
	FieldEpoch        = "epoch"
	FieldLastTime     = "last_time"
	FieldNow          = "now"
	FieldDrift        = "drift"
	FieldTolerance    = "tolerance"
	FieldSuffix       = "suffix"
	FieldVariant      = "variant"
)

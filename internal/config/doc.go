// Package config resolves the allocator service settings. Sources are applied
// in increasing precedence: defaults, environment, YAML file, CLI flags.
//
// YAML keys:
//
//	port                    listen port or host:port (env PORT)
//	default_limit           platform weight limit used when a request omits
//	                        one; finite and >= 0 (env DEFAULT_LIMIT)
//	max_items               weights accepted per POST /api/platforms; also
//	                        bounds the request body size (env MAX_ITEMS)
//	shutdown_grace_period   Go duration, e.g. "10s"
//	read_header_timeout, write_timeout, idle_timeout
//	enable_request_logging  access log per request
//	rate_limit.rps          token refill rate, 0 disables (env RATE_LIMIT_RPS)
//	rate_limit.burst        bucket size, 0 disables (env RATE_LIMIT_BURST)
//	log_level               zap level name (env LOG_LEVEL)
package config

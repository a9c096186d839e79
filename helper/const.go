package helper

const (
	// TimeFormatLogger time format for startup logger
	TimeFormatLogger = "2006/01/02 15:04:05"

	// HeaderContentType header key
	HeaderContentType = "Content-Type"
	// HeaderMIMEApplicationJSON content type value
	HeaderMIMEApplicationJSON = "application/json"

	// HeaderTenantID authoritative tenant identifier header
	HeaderTenantID = "x-tenant-id"
	// HeaderTenantName informational tenant name header
	HeaderTenantName = "x-tenant-name"
	// HeaderInternalRequest marker for service-to-service calls
	HeaderInternalRequest = "x-internal-request"

	// WORKDIR environment key for working directory
	WORKDIR = "WORKDIR"
)

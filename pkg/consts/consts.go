package consts

// Component is the component name
const Component = "sizzle-broker"

// session status
const (
	SessionPending      = "PENDING"
	SessionProvisioning = "PROVISIONING"
	SessionReady        = "READY"
	SessionActive       = "ACTIVE"
	SessionPaused       = "PAUSED"
	SessionTerminated   = "TERMINATED"
	SessionError        = "ERROR"
)

// instance status, as reported by provider adapters
const (
	InstancePending      = "pending"
	InstanceProvisioning = "provisioning"
	InstanceRunning      = "running"
	InstanceStopped      = "stopped"
	InstanceError        = "error"
)

// provider slugs
const (
	ProviderLocal  = "local"
	ProviderRunPod = "runpod"
	ProviderVast   = "vast"
)

// structured error codes surfaced to callers
const (
	CodeInvalidTier         = "INVALID_TIER"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeProvisioningFailed  = "PROVISIONING_FAILED"
	CodeNoCapacity          = "NO_CAPACITY"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeForbidden           = "FORBIDDEN"
	CodeInvalidState        = "INVALID_STATE"
)

// MinimumSessionMinutes is the balance floor required to create a session.
const MinimumSessionMinutes = 5

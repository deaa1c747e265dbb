package domain

// TargetKind represents the kind of infrastructure target
type TargetKind string

const (
	TargetKindCompute  TargetKind = "compute"
	TargetKindDatabase TargetKind = "database"
)

// AccessType represents how an identity reaches a target
type AccessType string

const (
	AccessTypeStanding AccessType = "standing"
	AccessTypeJIT      AccessType = "jit"
)

// StepKind represents the kind of entity a path step passes through
type StepKind string

const (
	StepKindIdentity   StepKind = "identity"
	StepKindRole       StepKind = "role"
	StepKindVault      StepKind = "vault"
	StepKindCredential StepKind = "credential"
	StepKindPolicy     StepKind = "policy"
)

// MemberKind represents the kind of a vault membership or policy principal
type MemberKind string

const (
	MemberKindIdentity MemberKind = "identity"
	MemberKindRole     MemberKind = "role"
)

// LogLevel represents log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

package model

// Policy names an authorization policy family.
type Policy string

const (
	PolicyRBAC Policy = "RBAC"
	PolicyABAC Policy = "ABAC"
	PolicyMAC  Policy = "MAC"
	PolicyDAC  Policy = "DAC"
)

// Policies lists the known policy families in evaluation-table order.
var Policies = []Policy{PolicyRBAC, PolicyABAC, PolicyMAC, PolicyDAC}

// Variant names the security architecture being benchmarked.
type Variant string

const (
	VariantZeroTrust             Variant = "Zero Trust Only"
	VariantZeroTrustBlockchain   Variant = "Zero Trust + Blockchain"
	VariantZeroTrustBlockchainAI Variant = "Zero Trust + Blockchain + AI"
	VariantUnknown               Variant = "Unknown"
)

// Variants lists the three benchmarked architectures.
var Variants = []Variant{VariantZeroTrust, VariantZeroTrustBlockchain, VariantZeroTrustBlockchainAI}

// RiskProfile keys the heuristic fallback score.
type RiskProfile string

const (
	ProfileLow   RiskProfile = "low"
	ProfileHigh  RiskProfile = "high"
	ProfileAdmin RiskProfile = "admin"
)

// Credentials are what a simulated principal presents to the gate.
type Credentials struct {
	User     string
	Password string
	MFACode  string
}

// User is the principal under authorization.
type User struct {
	Username    string
	Role        string
	RiskProfile RiskProfile
}

// Context carries request attributes consulted by ABAC.
type Context struct {
	Location string
}

// HTTP status values surfaced in result records.
const (
	StatusOK           = 200
	StatusUnauthorized = 401
	StatusFallback     = 500
)

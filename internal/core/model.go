package core

import (
	"time"
)

// Queue is a named operational destination to which a document is routed
type Queue string

// Routing queues used by the ORD document desk
const (
	QueueAccountInquiryUS   Queue = "Account_Inquiry_US"
	QueueNonUPSShipments    Queue = "ORD_SI-Non_UPS_Shipments"
	QueuePreAlert           Queue = "RAFT_PreAlert"
	QueueArrivalNotice      Queue = "RAFT_ArrivalNotice"
	QueueShipmentInitiation Queue = "Shipment_Initiation_Brkg_Inland_SI"
)

// Email represents an inbound document submitted for routing
type Email struct {
	From            string
	To              []string
	Cc              []string
	Subject         string
	Body            string
	AttachmentNames []string
	ReceivedAt      time.Time
	Headers         map[string][]string
}

// NormalizedView is a read-only, lower-cased projection of an Email used
// during rule evaluation. It is recomputed per routing call and never
// shared across documents.
type NormalizedView struct {
	Subject         string
	Body            string
	SenderDomain    string
	AttachmentNames []string
}

// Confidence labels attached to routing decisions
const (
	ConfidenceHigh    = "HIGH"
	ConfidenceMedium  = "MEDIUM"
	ConfidenceDefault = "DEFAULT"
)

// RoutingDecision is the outcome of routing a single document
type RoutingDecision struct {
	Queue           Queue
	RuleID          int
	RuleDescription string
	Confidence      float64
	ConfidenceLabel string
	MatchReason     string
	MatchedKeywords []string
	RoutedAt        time.Time
}

// Recommendation is a non-authoritative routing suggestion produced by a
// secondary classifier. It is displayed alongside the deterministic
// decision and never overrides it.
type Recommendation struct {
	Queue        Queue
	Confidence   float64
	Reasons      []string
	ModelUsed    string
	AnalyzedAt   time.Time
	ProcessingID string
}

type CacheEntry struct {
	SenderEmail string
	Queue       Queue
	Confidence  float32
	LastSeen    time.Time
	ExpiresAt   time.Time
}

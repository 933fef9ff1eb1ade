package rules

import (
	"time"

	"github.com/mikey/mail-router/internal/core"
)

// QueueInfo is static operational metadata for a routing queue. The engine
// only reports it on decisions; executing autonomous actions and enforcing
// SLAs is the job of external actuators.
type QueueInfo struct {
	Team              string
	Contacts          []string
	SLA               time.Duration
	Escalation        string
	BusinessImpact    string
	AutonomousActions []string
}

var queueInfo = map[core.Queue]QueueInfo{
	core.QueueAccountInquiryUS: {
		Team:           "Customer Account Services Team",
		Contacts:       []string{"account.setup@ups.com", "customer.onboarding@ups.com", "legal.compliance@ups.com"},
		SLA:            4 * time.Hour,
		Escalation:     "account.manager@ups.com",
		BusinessImpact: "high",
		AutonomousActions: []string{
			"auto_acknowledge", "priority_flag", "legal_review_trigger",
		},
	},
	core.QueueNonUPSShipments: {
		Team:           "External Carrier Relations Team",
		Contacts:       []string{"carrier.relations@ups.com", "evergreen.coordinator@ups.com"},
		SLA:            2 * time.Hour,
		Escalation:     "carrier.manager@ups.com",
		BusinessImpact: "high",
		AutonomousActions: []string{
			"auto_acknowledge", "carrier_sync", "tracking_update",
		},
	},
	core.QueuePreAlert: {
		Team:           "Shipment Coordination Team",
		Contacts:       []string{"prealert.team@ups.com", "shipment.coordination@ups.com"},
		SLA:            time.Hour,
		Escalation:     "operations.supervisor@ups.com",
		BusinessImpact: "critical",
		AutonomousActions: []string{
			"auto_acknowledge", "schedule_coordination", "resource_allocation",
		},
	},
	core.QueueArrivalNotice: {
		Team:           "Port Operations Team",
		Contacts:       []string{"port.operations@ups.com", "arrival.notices@ups.com", "customs.clearance@ups.com"},
		SLA:            30 * time.Minute,
		Escalation:     "port.supervisor@ups.com",
		BusinessImpact: "critical",
		AutonomousActions: []string{
			"auto_acknowledge", "customs_notification", "pickup_scheduling",
		},
	},
	core.QueueShipmentInitiation: {
		Team:           "General Shipment Processing Team",
		Contacts:       []string{"shipment.processing@ups.com", "inland.transport@ups.com"},
		SLA:            6 * time.Hour,
		Escalation:     "processing.manager@ups.com",
		BusinessImpact: "medium",
		AutonomousActions: []string{
			"auto_acknowledge", "route_optimization", "capacity_check",
		},
	},
}

// Info returns the operational metadata for a queue
func Info(queue core.Queue) (QueueInfo, bool) {
	info, ok := queueInfo[queue]
	return info, ok
}

// KnownQueues returns every queue with registered metadata
func KnownQueues() []core.Queue {
	return []core.Queue{
		core.QueueAccountInquiryUS,
		core.QueueNonUPSShipments,
		core.QueuePreAlert,
		core.QueueArrivalNotice,
		core.QueueShipmentInitiation,
	}
}

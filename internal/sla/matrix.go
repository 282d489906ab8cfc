// Package sla implements the deadline matrix and the live status evaluator.
// The tables are immutable process-wide constants built once at init.
package sla

import (
	"time"

	"github.com/spec-kit/service-desk/internal/domain"
)

// Milestone is the SLA category active while a ticket sits in a node.
type Milestone string

const (
	MilestoneFirstResponse Milestone = "first_response"
	MilestoneSolution      Milestone = "solution"
	MilestoneQuote         Milestone = "quote"
	MilestoneClose         Milestone = "close"
	// MilestoneNone means no deadline applies in the node.
	MilestoneNone Milestone = ""
)

// durationMatrix maps (priority, milestone) to the allowed hours.
// quote is not reachable by any node today but stays in the matrix so a
// future node mapping to it works without changes here.
var durationMatrix = map[domain.TicketPriority]map[Milestone]time.Duration{
	domain.TicketPriorityP0: {
		MilestoneFirstResponse: 2 * time.Hour,
		MilestoneSolution:      4 * time.Hour,
		MilestoneQuote:         24 * time.Hour,
		MilestoneClose:         36 * time.Hour,
	},
	domain.TicketPriorityP1: {
		MilestoneFirstResponse: 8 * time.Hour,
		MilestoneSolution:      24 * time.Hour,
		MilestoneQuote:         48 * time.Hour,
		MilestoneClose:         72 * time.Hour,
	},
	domain.TicketPriorityP2: {
		MilestoneFirstResponse: 24 * time.Hour,
		MilestoneSolution:      48 * time.Hour,
		MilestoneQuote:         120 * time.Hour,
		MilestoneClose:         168 * time.Hour,
	},
}

// nodeMilestoneMap assigns each node its active milestone. Nodes absent from
// the map (all terminals included) carry no deadline.
var nodeMilestoneMap = map[domain.Node]Milestone{
	domain.NodeDraft:     MilestoneFirstResponse,
	domain.NodeSubmitted: MilestoneFirstResponse,
	domain.NodeGeReview:  MilestoneFirstResponse,

	domain.NodeInProgress:   MilestoneSolution,
	domain.NodeMsReview:     MilestoneSolution,
	domain.NodeOpReceiving:  MilestoneSolution,
	domain.NodeOpDiagnosing: MilestoneSolution,
	domain.NodeDlReceiving:  MilestoneSolution,

	domain.NodeOpRepairing: MilestoneClose,
	domain.NodeOpQA:        MilestoneClose,
	domain.NodeMsClosing:   MilestoneClose,
	domain.NodeDlRepairing: MilestoneClose,
	domain.NodeDlQA:        MilestoneClose,
	domain.NodeGeClosing:   MilestoneClose,
}

// MilestoneFor returns the milestone active in the node, or MilestoneNone.
// Unknown nodes deliberately map to MilestoneNone rather than erroring so an
// unmapped node never blocks ticket access.
func MilestoneFor(node domain.Node) Milestone {
	return nodeMilestoneMap[node]
}

// DurationFor returns the allowed duration for a priority and milestone.
// Unknown priorities fall back to P2; MilestoneNone yields zero.
func DurationFor(priority domain.TicketPriority, milestone Milestone) time.Duration {
	if milestone == MilestoneNone {
		return 0
	}
	row, ok := durationMatrix[priority]
	if !ok {
		row = durationMatrix[domain.TicketPriorityP2]
	}
	return row[milestone]
}

// Package workflow holds the per-type ticket state graphs. The graphs are
// immutable process-wide tables built once at init and safe for concurrent
// reads.
package workflow

import (
	"github.com/spec-kit/service-desk/internal/domain"
)

// Graph describes the node set, allowed edges and terminal nodes for one
// ticket type.
type Graph struct {
	ticketType domain.TicketType
	initial    domain.Node
	nodes      map[domain.Node]struct{}
	terminal   map[domain.Node]struct{}
	edges      map[domain.Node][]domain.Node
}

var registry = map[domain.TicketType]*Graph{
	domain.TicketTypeInquiry: buildGraph(domain.TicketTypeInquiry, domain.NodeDraft,
		[]domain.Node{domain.NodeResolved, domain.NodeAutoClosed, domain.NodeConverted, domain.NodeCancelled},
		map[domain.Node][]domain.Node{
			domain.NodeDraft:           {domain.NodeInProgress, domain.NodeConverted},
			domain.NodeInProgress:      {domain.NodeWaitingCustomer, domain.NodeConverted},
			domain.NodeWaitingCustomer: {domain.NodeResolved, domain.NodeConverted},
			// The one explicitly modeled edge out of a terminal node:
			// resolved inquiries are auto-closed by a follow-up job.
			domain.NodeResolved: {domain.NodeAutoClosed},
		}),
	domain.TicketTypeRMA: buildGraph(domain.TicketTypeRMA, domain.NodeSubmitted,
		[]domain.Node{domain.NodeClosed, domain.NodeCancelled},
		map[domain.Node][]domain.Node{
			domain.NodeSubmitted:    {domain.NodeMsReview},
			domain.NodeMsReview:     {domain.NodeOpReceiving},
			domain.NodeOpReceiving:  {domain.NodeOpDiagnosing},
			domain.NodeOpDiagnosing: {domain.NodeOpRepairing},
			domain.NodeOpRepairing:  {domain.NodeOpQA},
			domain.NodeOpQA:         {domain.NodeMsClosing},
			domain.NodeMsClosing:    {domain.NodeClosed},
		}),
	domain.TicketTypeSVC: buildGraph(domain.TicketTypeSVC, domain.NodeGeReview,
		[]domain.Node{domain.NodeClosed, domain.NodeCancelled},
		map[domain.Node][]domain.Node{
			domain.NodeGeReview:    {domain.NodeDlReceiving},
			domain.NodeDlReceiving: {domain.NodeDlRepairing},
			domain.NodeDlRepairing: {domain.NodeDlQA},
			domain.NodeDlQA:        {domain.NodeGeClosing},
			domain.NodeGeClosing:   {domain.NodeClosed},
		}),
}

// buildGraph assembles the node/edge sets and grants every non-terminal node
// an implicit edge to cancelled.
func buildGraph(t domain.TicketType, initial domain.Node, terminals []domain.Node, edges map[domain.Node][]domain.Node) *Graph {
	g := &Graph{
		ticketType: t,
		initial:    initial,
		nodes:      make(map[domain.Node]struct{}),
		terminal:   make(map[domain.Node]struct{}),
		edges:      make(map[domain.Node][]domain.Node),
	}
	for _, n := range terminals {
		g.terminal[n] = struct{}{}
		g.nodes[n] = struct{}{}
	}
	for from, tos := range edges {
		g.nodes[from] = struct{}{}
		for _, to := range tos {
			g.nodes[to] = struct{}{}
		}
		g.edges[from] = append([]domain.Node{}, tos...)
	}
	for n := range g.nodes {
		if _, isTerminal := g.terminal[n]; isTerminal {
			continue
		}
		g.edges[n] = append(g.edges[n], domain.NodeCancelled)
	}
	return g
}

// GraphFor returns the workflow graph for a ticket type.
func GraphFor(t domain.TicketType) (*Graph, bool) {
	g, ok := registry[t]
	return g, ok
}

// TicketType returns the type this graph belongs to.
func (g *Graph) TicketType() domain.TicketType {
	return g.ticketType
}

// Initial returns the node new tickets are created in.
func (g *Graph) Initial() domain.Node {
	return g.initial
}

// IsValidNode reports membership in the graph's node set.
func (g *Graph) IsValidNode(n domain.Node) bool {
	_, ok := g.nodes[n]
	return ok
}

// IsTerminal reports whether the node ends the ticket's active lifecycle.
func (g *Graph) IsTerminal(n domain.Node) bool {
	_, ok := g.terminal[n]
	return ok
}

// IsValidTransition reports whether the directed edge from→to exists.
func (g *Graph) IsValidTransition(from, to domain.Node) bool {
	for _, candidate := range g.edges[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Transitions returns the allowed target nodes from the given node.
func (g *Graph) Transitions(from domain.Node) []domain.Node {
	return append([]domain.Node{}, g.edges[from]...)
}

// nodeStatusMap projects every node onto its summary status bucket.
var nodeStatusMap = map[domain.Node]domain.TicketStatus{
	domain.NodeDraft:           domain.TicketStatusOpen,
	domain.NodeSubmitted:       domain.TicketStatusOpen,
	domain.NodeInProgress:      domain.TicketStatusInProgress,
	domain.NodeWaitingCustomer: domain.TicketStatusWaiting,
	domain.NodeMsReview:        domain.TicketStatusInProgress,
	domain.NodeGeReview:        domain.TicketStatusInProgress,
	domain.NodeOpReceiving:     domain.TicketStatusInProgress,
	domain.NodeOpDiagnosing:    domain.TicketStatusInProgress,
	domain.NodeOpRepairing:     domain.TicketStatusInProgress,
	domain.NodeOpQA:            domain.TicketStatusInProgress,
	domain.NodeDlReceiving:     domain.TicketStatusInProgress,
	domain.NodeDlRepairing:     domain.TicketStatusInProgress,
	domain.NodeDlQA:            domain.TicketStatusInProgress,
	domain.NodeMsClosing:       domain.TicketStatusInProgress,
	domain.NodeGeClosing:       domain.TicketStatusInProgress,
	domain.NodeResolved:        domain.TicketStatusResolved,
	domain.NodeClosed:          domain.TicketStatusClosed,
	domain.NodeAutoClosed:      domain.TicketStatusClosed,
	domain.NodeConverted:       domain.TicketStatusClosed,
	domain.NodeCancelled:       domain.TicketStatusCancelled,
}

// StatusFor maps a node to its summary status bucket.
func StatusFor(n domain.Node) domain.TicketStatus {
	if status, ok := nodeStatusMap[n]; ok {
		return status
	}
	return domain.TicketStatusOpen
}

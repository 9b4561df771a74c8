// Package ingress provides pure functions for front-door routing labels and
// ingress role discovery. All lookups go through declared ownership labels,
// never image identity.
package ingress

import "fmt"

// =============================================================================
// Ownership Labels
// =============================================================================

// Label keys declaring stack ownership and role. Every externally visible
// resource carries these; discovery rules select on them exclusively.
const (
	LabelStack   = "pact.stackpact.io/stack"
	LabelService = "pact.stackpact.io/service"
	LabelRole    = "pact.stackpact.io/role"
)

// Role values for the LabelRole key.
const (
	RoleEdge = "edge"
	RoleApp  = "app"
)

// Shared edge ports the single front door terminates.
const (
	EdgePortHTTP  = 80
	EdgePortHTTPS = 443
)

// EdgePorts returns the shared edge ports as a slice.
func EdgePorts() []int {
	return []int{EdgePortHTTP, EdgePortHTTPS}
}

// RoleOf returns the declared role from a label set, or "" if undeclared.
func RoleOf(labels map[string]string) string {
	return labels[LabelRole]
}

// OwnedBy reports whether a label set declares ownership by the given stack.
func OwnedBy(labels map[string]string, stack string) bool {
	return labels[LabelStack] == stack
}

// =============================================================================
// Front-Door Routing Labels
// =============================================================================

// RouteParams contains parameters for generating front-door routing labels.
type RouteParams struct {
	// Stack is the stack identity token; router and service names are keyed
	// by it so routes never collide across stacks.
	Stack string

	// ServiceName is the service receiving the traffic (e.g., "web").
	ServiceName string

	// AppHost is the derived external hostname the router matches on.
	AppHost string

	// Port is the container port the front door forwards to.
	Port int

	// EnableTLS adds an HTTPS router with TLS termination.
	EnableTLS bool
}

// RouteLabels generates Traefik labels routing AppHost traffic to a service.
//
// Router and service names follow the pattern {stack}-{serviceName}, keeping
// them unique across concurrently deployed stacks.
//
// Example:
//
//	labels := RouteLabels(RouteParams{
//	    Stack:       "acctdemo",
//	    ServiceName: "web",
//	    AppHost:     "acctdemo.localtest.me",
//	    Port:        80,
//	})
//	// labels["traefik.http.routers.acctdemo-web.rule"] == "Host(`acctdemo.localtest.me`)"
func RouteLabels(params RouteParams) map[string]string {
	name := fmt.Sprintf("%s-%s", params.Stack, params.ServiceName)

	labels := map[string]string{
		"traefik.enable": "true",

		fmt.Sprintf("traefik.http.routers.%s.rule", name):        fmt.Sprintf("Host(`%s`)", params.AppHost),
		fmt.Sprintf("traefik.http.routers.%s.entrypoints", name): "web",

		fmt.Sprintf("traefik.http.services.%s.loadbalancer.server.port", name): fmt.Sprintf("%d", params.Port),
	}

	if params.EnableTLS {
		secureName := name + "-secure"
		labels[fmt.Sprintf("traefik.http.routers.%s.rule", secureName)] = fmt.Sprintf("Host(`%s`)", params.AppHost)
		labels[fmt.Sprintf("traefik.http.routers.%s.entrypoints", secureName)] = "websecure"
		labels[fmt.Sprintf("traefik.http.routers.%s.tls", secureName)] = "true"
		labels[fmt.Sprintf("traefik.http.routers.%s.tls.certresolver", secureName)] = "letsencrypt"
	}

	return labels
}

// OwnershipLabels generates the ownership label set for a stack resource.
func OwnershipLabels(stack, service, role string) map[string]string {
	labels := map[string]string{
		LabelStack:   stack,
		LabelService: service,
	}
	if role != "" {
		labels[LabelRole] = role
	}
	return labels
}

// Package server provides the HTTP surface of the filing service: the
// filename resolution endpoint, health check endpoints for Kubernetes
// probes, and a dedicated Prometheus metrics server.
package server

// Package cache provides short-lived TTL caching for upstream lookup data
// (states and commissions). Two backends implement the same Store interface:
// an in-process memory store, the default, and a Redis store for deployments
// running more than one instance behind a load balancer.
//
// Expiry is lazy: an expired entry is removed the first time it is read.
// CleanupExpired performs a full sweep and is only ever invoked explicitly,
// via the maintenance endpoint.
package cache

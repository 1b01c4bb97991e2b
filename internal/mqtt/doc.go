// Package mqtt implements the message-bus boundary over the Eclipse
// Paho client.
//
// Every observed resource update is published retained with QoS 1
// (at-least-once), so new subscribers immediately receive the last
// known value for each resource path. Publishes are fire-and-forget
// from the caller's perspective: delivery errors become log lines, and
// Paho's auto-reconnect queues messages across brief broker outages.
//
// The bridge's own availability is published retained to
// <topicPrefix>/bridge/state ("online"/"offline"), with an MQTT last
// will covering ungraceful disconnects.
package mqtt

// Package linkformat parses CoAP link-format documents (RFC 6690).
//
// The Trådfri gateway describes its resource tree at .well-known/core
// as a comma-separated list of URI references with link parameters:
//
//	</15001>;obs,</15004>;obs,</15005>;obs,</15011/9063>;ct=0
//
// Parse turns such a document into a map from resource path to
// attributes, which the discovery loop filters for observable entries.
// Separators inside quoted parameter values are handled; unknown
// parameters are preserved in Attributes.Extra.
package linkformat

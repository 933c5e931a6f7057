// Package analysis turns assessment records into performance, trend, risk and
// recommendation summaries. The same records always produce the same output.
package analysis

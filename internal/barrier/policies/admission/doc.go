// Package admission provides the stock admission policies: paying from
// weight credit, paid and unpaid execution from trusted origins, expected
// query responses, version subscriptions, and topic-based message ids.
package admission

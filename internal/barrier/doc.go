// Package barrier composes independently authored message-admission
// policies into ordered chains.
//
// Three policy families exist, each with its own chain combinator:
//
//   - AdmissionPolicy / AdmissionChain: ordered OR. The first policy that
//     accepts stops the chain; rejections are discarded and the chain
//     continues. If nothing accepts, the chain fails with ErrUnsupported.
//   - SuspensionPolicy / SuspensionChain: ordered OR over booleans. The
//     first policy reporting true stops the chain.
//   - DenialPolicy / DenialChain: ordered AND. The first rejection stops
//     the chain and is returned unchanged.
//
// Every trial shares one *Properties and one *domain.Instructions per
// evaluation. Policies may mutate both, and mutations made by a rejecting
// admission policy stay visible to the policies after it unless the chain
// was built WithIsolation.
//
// Chains never block and never consult ctx.Done(); ctx carries request
// scoped values (request id, trace span) for observers.
package barrier

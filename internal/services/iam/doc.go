// Package iam resolves and establishes the acting principal of a request.
//
// It owns two concerns:
//
//   - Principal resolution: a session token maps to the principal stored at
//     login, returned verbatim without re-reading the operator or customer
//     collection. Missing or unknown tokens resolve to auth.Anonymous.
//   - Identity establishment: a verified external identity is looked up by
//     email in the collection of its principal class and created on first
//     login. Operators created this way are managers (op level 2).
//
// Request Flow:
//
//	Login callback → Establish(identity, class) → CreateSession → cookie
//	Request → cookie → Resolve(token) → auth.WithPrincipal → policy rules
//
// Concurrent first logins for one email are serialized by the unique email
// index: the losing insert re-reads and returns the winning record.
package iam

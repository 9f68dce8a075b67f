// Package acadbond implements the authentication and data core of the
// AcadBond academic network: signed session tokens, the credential store,
// and the one-time-token flows for email verification and password reset.
//
// Session tokens:
//   - TokenService signs {id, email, userType} claims with a symmetric
//     secret (HS256 only) and validates them statelessly. There is no
//     server-side session storage; revocation before expiry is not
//     supported, logout only clears the client cookie.
//
// One-time tokens:
//   - Email verification and password reset both use a random value stored
//     on the user row next to an expiry column. Consumption is a single
//     conditional UPDATE (compare-and-clear), so two concurrent requests
//     carrying the same token can never both succeed. Expiry is checked
//     lazily at consumption; there is no sweeping process.
//
// Commands:
//   - The stateful operations (register, verify email, initialize and
//     finalize a password reset) are message/handler pairs that run inside
//     a store transaction and emit notifications through a Notifier
//     collaborator.
package acadbond

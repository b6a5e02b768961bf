// Package security groups the packages protecting backup content and the
// credentials used to produce it.
//
//   - encryption: Fernet tokens for artifacts, optionally deterministic so
//     unchanged objects produce unchanged files
//   - secrets: resolution of ${secret:name} references from the
//     environment or a secrets directory
//   - tls: HTTPS for the daemon endpoints with certificate reload
package security

// Package git implements the git output sink.
//
// A run clones the configured repository into a temporary directory
// (shallow by default), removes every tracked file, writes the batch
// artifacts, stages everything and, only when the status is not clean,
// commits with the configured message and pushes. Supported remotes are
// HTTPS with a token, SSH with a key file, and anything go-git reaches
// without credentials, local paths included.
package git

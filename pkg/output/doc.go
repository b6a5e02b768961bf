// Package output defines the sink contract and the artifact encoding shared
// by the git and S3 sinks.
//
// Every object of a batch becomes one artifact at
//
//	{type}/{name_sanitized}_{id}.{format}
//
// whose content is the export payload, encrypted when the object type is
// configured for encryption.
package output

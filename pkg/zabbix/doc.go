// Package zabbix is a small client for the Zabbix JSON-RPC API covering the
// calls needed to back up configuration: apiinfo.version, user.login,
// user.logout, <object>.get and configuration.export.
//
// Object types are an explicit enumeration. Each ObjectType maps statically
// to the API object used to list it, the identity field returned by the
// listing and the option key understood by configuration.export:
//
//	spec, _ := zabbix.Hosts.Spec()
//	// spec.Method == "host", spec.IDField == "hostid", spec.ExportField == "hosts"
//
// Errors are split in three kinds. RequestError means the server answered
// with a JSON-RPC error object. ProcessingError means the call failed before
// an answer could be interpreted. AuthError wraps either of them when
// Connect fails.
package zabbix

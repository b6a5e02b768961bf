// Zabbup backs up Zabbix configuration to git and S3-compatible storage.
//
// It exports templates, hosts, maps and the other configuration objects
// through the Zabbix API, optionally encrypts them, and writes one artifact
// per object to every enabled output.
//
// Usage:
//
//	# Run one backup
//	zabbup backup --config /etc/zabbup/config.yaml
//
//	# Export without writing anything
//	zabbup backup --dry-run
//
//	# Check configuration and secrets without contacting Zabbix
//	zabbup validate
//
//	# Run backups on the configured cron schedule
//	zabbup daemon
//
//	# Show recent runs
//	zabbup history --limit 10 --format json
//
//	# Print the plaintext of an encrypted artifact
//	zabbup decrypt --file hosts/Zabbixserver_10084.yaml
package main

func main() {
	Execute()
}

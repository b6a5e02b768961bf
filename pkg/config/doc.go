// Package config provides configuration management for zabbup.
//
// This package handles loading, validating, and resolving configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// The loaded *Config is passed explicitly to every component that needs it;
// there is no package-level configuration.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention ZABBUP_SECTION_FIELD.
// For example:
//
//   - ZABBUP_GENERAL_DRYRUN overrides general.dryrun
//   - ZABBUP_ZABBIX_TOKEN overrides zabbix.auth.token
//   - ZABBUP_INPUTS_HOSTS_ENABLE overrides inputs.hosts.enable
//   - ZABBUP_OUTPUTS_S3_SECRET_KEY overrides outputs.s3.secret_key
//
// # Encryption Inheritance
//
// Every object type under inputs may leave encryption and
// encryption_deterministic unset, in which case the values under general
// apply. Resolve performs this substitution once per run and returns a
// Resolved snapshot that sinks consult:
//
//	resolved, err := config.Resolve(cfg)
//	for _, ts := range resolved.Enabled() {
//	    fmt.Println(ts.Type, ts.Encrypt, ts.Deterministic)
//	}
//
// # Example Configuration
//
//	general:
//	  loglevel: info
//	  max_threads: 10
//	  encryption: true
//	  encryption_key: "${secret:backup-key}"
//
//	zabbix:
//	  url: "https://zabbix.example.com"
//	  auth:
//	    token: "${secret:zabbix-token}"
//
//	inputs:
//	  templates:
//	    enable: true
//	  hosts:
//	    enable: true
//	    encryption_deterministic: true
//	    excludes: ["^test-"]
//
//	outputs:
//	  git:
//	    enable: true
//	    repo: "git@git.example.com:ops/zabbix-backup.git"
//	    auth:
//	      type: ssh
//	      ssh_key_path: /etc/zabbup/id_ed25519
package config

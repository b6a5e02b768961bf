// Package secrets resolves ${secret:name} references in configuration
// values.
//
// A Manager asks its providers in order and caches what they return:
//
//   - EnvProvider reads ZABBUP_SECRET_<NAME> environment variables
//   - FileProvider reads one secret per file from a directory, optionally
//     watching it with fsnotify so rotated files are picked up
//
// ResolveConfig returns a copy of a configuration with every credential
// field resolved. It runs at the start of each backup so a daemon sees
// rotated secrets without a restart.
//
// Example:
//
//	mgr, err := secrets.NewManager(&cfg.Secrets, logger)
//	if err != nil {
//		return err
//	}
//	defer mgr.Close()
//
//	resolved, err := mgr.ResolveConfig(ctx, cfg)
package secrets

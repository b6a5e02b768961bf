// Package tls serves HTTPS for the daemon endpoints.
//
// The certificate pair is reloaded when the files change, which lets
// certificates renewed by an external tool (cert-manager, certbot) take
// effect without a restart:
//
//	tlsConfig, err := tls.ServerConfig(ctx, &cfg.Daemon.TLS, logger)
//	if err != nil {
//	    return err
//	}
//	srv.TLSConfig = tlsConfig
//	srv.ListenAndServeTLS("", "")
package tls

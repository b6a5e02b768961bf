// Package export fetches Zabbix configuration objects into a Batch.
//
// A Fetcher lists the objects of each enabled object type, drops the ones
// whose names match an exclude pattern and exports the rest through a
// bounded worker pool:
//
//	fetcher, err := export.NewFetcher(client, resolved, export.Options{
//	    MaxThreads: cfg.General.MaxThreads,
//	    ListLimit:  cfg.Zabbix.ListLimit,
//	    Format:     format,
//	}, logger)
//	batch, err := fetcher.ExportAll(ctx)
//
// The first failing export aborts the run. Tasks already running are not
// cancelled and the call does not wait for them; their results are dropped.
package export

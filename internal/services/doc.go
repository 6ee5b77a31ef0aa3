// Package services runs datapulse's end-to-end flows. A SummaryService turns
// one price table or a set of log archives into a cleaned table, per-stage
// audit reports, a group summary and a list of diagnostic lines.
//
// # Price runs
//
//	svc, err := services.NewSummaryService(cfg, logger, services.WithMetrics(metrics))
//	result, err := svc.RunPrices(ctx, "data/AAPL.csv")
//
// A missing price file is not an error: the result is empty and its
// diagnostics say so. Malformed delimited input is returned as an error.
//
// # Log runs
//
//	result, err := svc.RunLogs(ctx, "data/logs.zip", "data/more.zip")
//
// Archives are walked in the order given and their records merged before
// cleaning. A missing or corrupt archive ends the run.
//
// # Testing
//
// The loader and walker are interfaces so tests can replace them:
//
//	loader := new(MockTableLoader)
//	loader.On("Load", mock.Anything, "x.csv").Return(dataprocessing.LoadResult{Table: table}, nil)
//	svc, _ := NewSummaryService(cfg, logger, WithTableLoader(loader))
package services

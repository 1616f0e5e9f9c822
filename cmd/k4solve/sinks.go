package main

import (
	"go.uber.org/zap"

	"k4solve/internal/config"
	"k4solve/internal/report"
	"k4solve/internal/trial"
)

// buildSinks wires the configured report outputs into one sink. The
// returned closer flushes everything; it runs even when the batch errors so
// a completed run always leaves its report behind.
func buildSinks(cfg *config.Config, runID string) (trial.Sink, func(), error) {
	var sinks report.MultiSink
	var closers []func()

	if cfg.Output.CSV != "" {
		csvSink, err := report.NewCSVSink(cfg.Output.CSV)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, csvSink)
		closers = append(closers, func() {
			if err := csvSink.Close(); err != nil {
				logger.Warn("csv sink close failed", zap.Error(err))
			}
		})
	}
	if cfg.Output.SQLite != "" {
		store, err := report.NewStore(cfg.Output.SQLite, runID)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, err
		}
		sinks = append(sinks, store)
		closers = append(closers, func() {
			if err := store.Close(); err != nil {
				logger.Warn("sqlite store close failed", zap.Error(err))
			}
		})
	}

	if len(sinks) == 0 {
		return trial.NopSink{}, func() {}, nil
	}
	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

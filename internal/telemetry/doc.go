// Package telemetry configures structured logging and the prometheus
// metrics of lorenzsim.
//
// The logger travels through context.Context so that the sampler, the
// render pipeline and the frame sinks all log with the run id of the
// command that started them:
//
//	logger := telemetry.WithRunID(telemetry.SetupLogger(""), id)
//	ctx = telemetry.WithLogger(ctx, logger)
//	...
//	telemetry.FromContext(ctx).Info("frames written", "count", n)
//
// [Metrics] counts solver steps and rendered frames. The registry is dumped
// once per invocation with [Metrics.WriteTextfile], ready for the
// node_exporter textfile collector.
package telemetry

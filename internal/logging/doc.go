// Package logging configures zerolog for urlookup and carries loggers and trace ids
// through context.Context.
//
// Every command run gets a ULID trace id. Loggers built here install a hook that copies
// the trace id from the event context onto each log line, so call sites only need
// `logging.FromContext(ctx).Info().Ctx(ctx)`.
package logging

// Package cityscout is the composition root of City Scout's catalog sync.
//
// It listens to a collection of travel itineraries (Firestore, or a local
// directory during development) and pushes three metadata aspects per
// changed document to a DataHub catalog: dataset properties, tags and
// lineage to the Google Places API source.
//
// Usage:
//
//	cfg, err := cityscout.LoadConfig("")
//	svc, err := cityscout.New(ctx, cfg, cityscout.WithLogger(logger))
//	defer svc.Close()
//
//	// Blocks until ctx is cancelled.
//	err = svc.Run(ctx, cfg.Source.Collection)
package cityscout

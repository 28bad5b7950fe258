// Package session holds both ends of a game session.
//
// Controller is the client side: it owns the Snapshot of one remote game,
// refreshes it with Sync and turns key presses into port submissions. A sync
// is all or nothing. Any failed read keeps the previous snapshot and reports
// a *PartialSyncError.
//
//	c := session.NewController(port)
//	if err := c.Sync(ctx); err != nil {
//		log.Printf("initial sync: %v", err)
//	}
//	c.HandleMove(ctx, component.Up)
//	frame := render.Plan(c.View(), screen)
//
// Manager is the dev world side: one engine per account address, optionally
// stored as JSON files through FilePersistence and evicted when idle.
package session

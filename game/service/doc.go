// Package service holds the world-facing business layer.
//
// Two capability surfaces live here. GamePort is what a client needs from a
// remote world bound to one account: three component reads and four system
// submissions. WorldService is the server side of the same protocol, backed
// by one engine per account through a SessionManager.
//
//	sessions := session.NewManagerWithPersistence(persistence)
//	configs := config.NewManager("configs")
//	world := service.NewWorldService(sessions, configs)
//
//	name, _ := component.ShortString("Pragma Hackathon")
//	_, err := world.Execute(ctx, account, service.SystemCreate, []component.Felt{name})
//
// Every GamePort failure matches ErrRemoteCallFailed. MemoryPort is an
// in-memory port with fault injection used by controller tests.
package service

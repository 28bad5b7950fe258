// Package websocket pushes state change notifications from the dev world to
// watching clients.
//
// The server side is Hub: one registration set per account, fed by Notify
// after every accepted system execution. The client side is Watch, which
// dials /ws?account=0x.. and delivers each notification on a channel.
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.Notify(service.Notification{Account: "0xabc", System: "Move"})
//
// Several queued notifications may share one frame, separated by newlines.
package websocket

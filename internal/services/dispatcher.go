package services

// Dispatcher delivers realtime events to connected clients. Delivery is
// at-most-once: a push for a user with no live connection is dropped
// silently, and clients reconcile by polling the listing endpoints.
//
// The in-process websocket hub implements this; a shared backplane can be
// substituted for multi-instance deployments.
type Dispatcher interface {
	PushToUser(userID, event string, payload interface{})
	Broadcast(event string, payload interface{})
}

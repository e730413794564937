package common

// ObserverInterface defines what event handlers need from a node observer.
// Classification has already happened by the time a handler calls in.
type ObserverInterface interface {
	LinkChanged(neighbor string, up bool, now float64)
	TransferStarted(neighbor string, class MessageClass)
	TransferCompleted(neighbor string, class MessageClass)
	TransferAborted(neighbor string, class MessageClass)
	MessageReceived(from string, class MessageClass)
	MessageDropped(class MessageClass)
	Tick(now float64) error
}

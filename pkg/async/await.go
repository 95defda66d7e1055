package async

// Await0 blocks until a is closed.
func Await0(a <-chan struct{}) {
	<-a
}

package syncer

import (
	"fmt"
	"io"
	"sync"
)

// Notifier shows short progress and completion messages to the user.
type Notifier interface {
	Notify(msg string)
}

// WriterNotifier prints each notice on its own line.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier returns a notifier writing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify implements Notifier.
func (n *WriterNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, msg)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

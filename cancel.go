package requesty

import "context"

// CancelHandle aborts an in-flight call. Cancel is idempotent and may be
// called before, during or after the call; once the call has settled it has
// no effect on the Result already produced. Create handles with
// NewCancelHandle; a zero CancelHandle never fires.
type CancelHandle struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCancelHandle returns a handle that has not been cancelled.
func NewCancelHandle() *CancelHandle {
	ctx, cancel := context.WithCancel(context.Background())
	return &CancelHandle{ctx: ctx, cancel: cancel}
}

// Cancel signals the call bound to the handle to abort.
func (h *CancelHandle) Cancel() {
	if h == nil || h.cancel == nil {
		return
	}
	h.cancel()
}

// Done is closed once Cancel has been called.
func (h *CancelHandle) Done() <-chan struct{} {
	if h == nil || h.ctx == nil {
		return nil
	}
	return h.ctx.Done()
}

// Canceled reports whether Cancel has been called.
func (h *CancelHandle) Canceled() bool {
	if h == nil || h.ctx == nil {
		return false
	}
	return h.ctx.Err() != nil
}

// bind cancels the attempt with ErrCanceled when the handle fires. The
// returned function detaches the binding.
func (h *CancelHandle) bind(cancel context.CancelCauseFunc) func() bool {
	if h == nil || h.ctx == nil {
		return func() bool { return false }
	}
	return context.AfterFunc(h.ctx, func() {
		cancel(ErrCanceled)
	})
}

package httpapi

import "context"

// hardStop is canceled by the server when its shutdown deadline passes, so
// handlers still waiting for a result give up.
var hardStop = context.Background()

// SetBaseContext installs the hard-stop context. Nil resets it.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	hardStop = ctx
}

// requestContext derives the context a handler waits on: canceled with the
// client request, at hard stop, or after the configured predict timeout.
func requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(hardStop, cancel)
	if predictTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, predictTimeout)
		return ctx, func() {
			tcancel()
			stop()
			cancel()
		}
	}
	return ctx, func() {
		stop()
		cancel()
	}
}

package browser

import (
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// evaluator is the remote-evaluation capability extraction and readiness
// consume. The core only ever sends small fixed scripts through it, with
// data passed as arguments. *rod.Page satisfies it.
type evaluator interface {
	Eval(js string, jsArgs ...any) (*proto.RuntimeRemoteObject, error)
}

// pageHandle adds the bounded-wait surface readiness needs for script
// attachment checks. *rod.Page satisfies it.
type pageHandle interface {
	evaluator
	Timeout(d time.Duration) *rod.Page
}

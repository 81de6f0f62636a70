package router

import (
	"github.com/vrouter-project/vrouter/core/engine"
)

const ROUTER_RECEIVE = 0
const ROUTER_EXECUTE = 1

type routerContract struct {
	r *Router
}

func (rc routerContract) Call(env *engine.Env, method byte, value uint64, args [][]byte) ([]byte, error) {
	switch method {
	case ROUTER_RECEIVE:
		// Value was already credited by the engine. No validation here;
		// the native balance guard catches stranded value at call end.
		return nil, nil
	case ROUTER_EXECUTE:
		// A nested top-level invocation from inside a script. The entry
		// lock is held for the whole outer call, so this always fails
		// with ErrReentrantCall.
		_, err := rc.r.Execute(env.S, env.Self, 0, env.Gas, nil, nil, nil, nil)
		return nil, err
	}
	return nil, engine.ErrUnknownMethod
}

// AsContract exposes the router inside the engine registry: scripts can
// route value to it (receive path) but cannot re-enter Execute.
func (r *Router) AsContract() engine.Contract {
	return routerContract{r}
}

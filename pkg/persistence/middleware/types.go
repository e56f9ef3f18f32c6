package middleware

import "github.com/aretw0/sitepass/pkg/ports"

// Middleware allows wrapping a TableStore to add behavior.
type Middleware func(ports.TableStore) ports.TableStore

// Chain applies mws to store so that the first middleware is the outermost.
func Chain(store ports.TableStore, mws ...Middleware) ports.TableStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

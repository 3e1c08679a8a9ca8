package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by each service's HTTP layer; pkg/app mounts it
// behind the shared middleware stack.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}

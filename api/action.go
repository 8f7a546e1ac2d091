package api

import (
	"github.com/ant0ine/go-json-rest/rest"
)

type Action struct {
	key         string
	method      string
	HandlerREST func(w rest.ResponseWriter, r *rest.Request)
}

func NewPOST(key string, handler func(w rest.ResponseWriter, r *rest.Request)) *Action {
	ac := &Action{
		key:         key,
		method:      "REST:POST",
		HandlerREST: handler,
	}
	return ac
}

func NewGet(key string, handler func(w rest.ResponseWriter, r *rest.Request)) *Action {
	ac := &Action{
		key:         key,
		method:      "REST:GET",
		HandlerREST: handler,
	}
	return ac
}

func (ac *Action) route() *rest.Route {
	if ac.method == "REST:POST" {
		return rest.Post(ac.key, ac.HandlerREST)
	}
	return rest.Get(ac.key, ac.HandlerREST)
}

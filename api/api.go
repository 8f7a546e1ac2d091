package api

import "net/http"

type API struct {
	rest *RESTApi
}

type APIConfig struct {
	ListenREST string
	Actions    []*Action
}

func NewAPI(conf *APIConfig) *API {
	api := &API{
		rest: NewREST(conf),
	}
	return api
}

func (api *API) Start() error {
	return api.rest.Start()
}

// Handler returns the REST handler without starting a listener.
func (api *API) Handler() (http.Handler, error) {
	return api.rest.Handler()
}

func (api *API) GetRest() *RESTApi {
	return api.rest
}

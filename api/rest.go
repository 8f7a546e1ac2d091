package api

import (
	"net/http"

	"github.com/ant0ine/go-json-rest/rest"
	log "github.com/sirupsen/logrus"
)

type RESTApi struct {
	api     *rest.Api
	listen  string
	actions []*Action
}

func NewREST(conf *APIConfig) *RESTApi {
	ra := &RESTApi{
		api:     rest.NewApi(),
		listen:  conf.ListenREST,
		actions: conf.Actions,
	}
	ra.api.Use(&rest.CorsMiddleware{
		OriginValidator: func(origin string, request *rest.Request) bool {
			return true
		},
	})
	return ra
}

func (ra *RESTApi) Handler() (http.Handler, error) {
	routes := []*rest.Route{
		rest.Get("/keep", ra.OnKeep),
	}
	for _, action := range ra.actions {
		routes = append(routes, action.route())
		log.Debugf("%s %s", action.method, action.key)
	}
	restRouter, err := rest.MakeRouter(routes...)
	if err != nil {
		return nil, err
	}
	ra.api.SetApp(restRouter)
	return ra.api.MakeHandler(), nil
}

func (ra *RESTApi) Start() error {
	handler, err := ra.Handler()
	if err != nil {
		return err
	}
	go func() {
		err := http.ListenAndServe(ra.listen, handler)
		if err != nil {
			log.Fatal(err)
		}
	}()
	log.Infof("REST api listen: %s", ra.listen)
	return nil
}

func (ra *RESTApi) OnKeep(w rest.ResponseWriter, r *rest.Request) {
	w.WriteHeader(http.StatusOK)
	w.WriteJson("status OK")
}

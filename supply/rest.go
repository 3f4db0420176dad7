package supply

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

const timeout = 15

// Router returns the handler serving the RESTful API. Cross-origin requests are allowed from any origin.
func (sp *Supply) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", sp.homeHandler)
	r.HandleFunc("/health", sp.healthHandler).Methods(http.MethodGet)
	r.Handle("/api/calculateSupply", sp.authenticate(http.HandlerFunc(sp.calculateHandler))).
		Methods(http.MethodGet) // recompute and save the supply
	r.HandleFunc("/api/getInfo", sp.infoHandler).Methods(http.MethodGet) // last saved supply
	r.HandleFunc("/api/login", sp.loginHandler).Methods(http.MethodPost) // get a bearer token

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
			http.MethodHead},
	})

	return c.Handler(r)
}

// Init sets up and starts the http/https server to service the RESTful API for a supply service. If sslPort, ssCert
// and sslKey are informed, it will start an https (TLS) server on the specified endpoint. Init returns when the
// service is stopped.
func (sp *Supply) Init(endpoint, port, sslPort, sslCert, sslKey string) string {
	var err, errTLS error

	var errc, errTLSc chan error

	r := sp.Router()

	sp.mu.Lock()

	select {
	case <-sp.sc:
		sp.mu.Unlock()

		return "service already stopped"
	default:
	}

	// start http server
	if port != "" {
		sp.s = &http.Server{
			Handler:      r,
			Addr:         endpoint + ":" + port,
			WriteTimeout: 4 * timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}

		errc = make(chan error, 1)

		go func(s *http.Server) {
			errc <- s.ListenAndServe()
		}(sp.s)

		log.Printf("Listening to API http requests on %s:%s", endpoint, port)
	}
	// start https server
	if sslPort != "" && sslCert != "" && sslKey != "" {
		sp.ss = &http.Server{
			Handler:      r,
			Addr:         endpoint + ":" + sslPort,
			WriteTimeout: 4 * timeout * time.Second,
			ReadTimeout:  timeout * time.Second,
		}

		errTLSc = make(chan error, 1)

		go func(s *http.Server) {
			errTLSc <- s.ListenAndServeTLS(sslCert, sslKey)
		}(sp.ss)

		log.Printf("Listening to API https requests on %s:%s", endpoint, sslPort)
	}

	sp.mu.Unlock()

	// wait for servers to be shutdown
	<-sp.sc

	if errc != nil {
		err = <-errc
	}

	if errTLSc != nil {
		errTLS = <-errTLSc
	}

	return fmt.Sprintf("shutdown http server:%v, https server:%v", err, errTLS)
}

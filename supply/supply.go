// Package supply implements the supply microservice.
//
// This microservice implements a RESTful API to compute the circulating supply of a token and serve the last
// computed snapshot. Recomputations are protected by a bearer token obtained from the login endpoint.
package supply

import (
	"context"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/tarancss/supply/lib/auth"
	"github.com/tarancss/supply/lib/circulating"
	"github.com/tarancss/supply/lib/msg"
	"github.com/tarancss/supply/lib/store"
	"github.com/tarancss/supply/lib/store/db"
)

// Supply contains the data necessary to deliver the service
type Supply struct {
	dbtype string
	db     store.DB                // db connection
	agg    *circulating.Aggregator // supply computation
	iss    *auth.Issuer            // bearer tokens
	mb     msg.Publisher           // optional
	s      *http.Server            // http server
	ss     *http.Server            // https server
	sc     chan struct{}           // http server channel used for graceful shutdowns
	mu     sync.Mutex              // guards s, ss and sc against concurrent Init and Stop
	once   sync.Once
}

// New returns a pointer to a new Supply service
func New(dbtype string, dbConn store.DB, mb msg.Publisher, agg *circulating.Aggregator, iss *auth.Issuer) *Supply {
	return &Supply{
		dbtype: dbtype,
		db:     dbConn,
		mb:     mb,
		agg:    agg,
		iss:    iss,
		sc:     make(chan struct{}),
	}
}

// Stop shuts down the http servers implementing the RESTful API and closes gracefully the connections to message
// broker and database. Calls after the first one do nothing.
func (sp *Supply) Stop() {
	sp.once.Do(sp.stop)
}

func (sp *Supply) stop() {
	var err error

	sp.mu.Lock()
	// shutdown http server
	if sp.s != nil {
		if err = sp.s.Shutdown(context.Background()); err != nil {
			log.Printf("Error in http server shutdown:%v", err)
		}
	}

	if sp.ss != nil {
		if err = sp.ss.Shutdown(context.Background()); err != nil {
			log.Printf("Error in https server shutdown:%v", err)
		}
	}

	close(sp.sc) // close server channels to indicate shutdowns have finished
	sp.mu.Unlock()
	// close message broker
	if sp.mb != nil {
		if err = sp.mb.Close(); err != nil {
			log.Printf("Error closing message broker:%v", err)
		}
	}
	// close database
	if sp.db != nil {
		err = db.Close(sp.dbtype, sp.db)
		log.Printf("Disconnecting %v database, err:%v", sp.dbtype, err)
	}
}

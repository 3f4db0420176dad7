// Package main: circulating supply service.
//
// The service keeps a single snapshot of the token supply. Without a database connection configured it uses a
// volatile memory store, so the snapshot is lost when the service stops.
package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tarancss/supply/lib/auth"
	"github.com/tarancss/supply/lib/circulating"
	"github.com/tarancss/supply/lib/config"
	"github.com/tarancss/supply/lib/ledger"
	"github.com/tarancss/supply/lib/metrics"
	"github.com/tarancss/supply/lib/msg"
	"github.com/tarancss/supply/lib/msg/amqp"
	"github.com/tarancss/supply/lib/store/db"
	"github.com/tarancss/supply/supply"
)

// clock skew tolerated when verifying bearer tokens
const leeway = 30 * time.Second

func main() {
	// get command line flags
	confPath := flag.String("c", "", "flag to get configuration from json file")
	monitor := flag.Bool("m", false, "flag to monitor the server with Prometheus at http://localhost:9090")
	flag.Parse()

	// extract configuration
	conf, err := config.ExtractConfiguration(*confPath)
	if err != nil {
		log.Fatal(err)
	}

	if lvl, errLvl := log.ParseLevel(conf.LogLevel); errLvl == nil {
		log.SetLevel(lvl)
	} else {
		log.Warnf("Unknown log level %q, using %v", conf.LogLevel, log.GetLevel())
	}

	log.Printf("Configuration:%v", conf)

	// connect to database
	dbConn, err := db.New(conf.DBType, conf.DBConn)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("Connected to %s database", conf.DBType)

	// load Prometheus monitor
	if *monitor {
		go func() {
			log.Println("Serving metrics API")

			h := http.NewServeMux()

			h.Handle("/metrics", metrics.Handler())

			if errMon := http.ListenAndServe(":9100", h); errMon != nil {
				log.Errorf("Metrics API stopped:%v", errMon)
			}
		}()
	}

	// load message broker
	var mb msg.Publisher

	switch conf.MbType {
	case "amqp":
		r, errMb := amqp.New(conf.MbConn)
		if errMb != nil {
			time.Sleep(10 * time.Second) // wait 10s for AMQP to be ready and try to reconnect

			if r, errMb = amqp.New(conf.MbConn); errMb != nil {
				log.Fatal(errMb)
			}
		}

		if errMb = r.Setup(); errMb != nil {
			log.Fatal(errMb)
		}

		mb = r
	case "":
		log.Println("No message broker configured, snapshots will not be published")
	default:
		log.Printf("Unknown message broker type: %s", conf.MbType)
	}

	// supply computation
	agg := circulating.New(ledger.NewScan(conf.Ledger.URL, conf.Ledger.APIKey, nil), dbConn, mb, conf.Token,
		conf.Parallel)

	if conf.JWTSecret == "" {
		log.Warn("No jwt secret configured, login and supply recomputation will fail")
	}

	// create supply service
	sp := supply.New(conf.DBType, dbConn, mb, agg, auth.New(conf.JWTSecret, leeway))

	// capture CTRL+C or docker's SIGTERM for gracious exit
	finish := make(chan int)

	go func() {
		sigchan := make(chan os.Signal, 10)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		<-sigchan
		log.Println("Program killed !")
		// do last actions and wait for all write operations to end
		sp.Stop()
		close(finish)
	}()

	// init RESTful API, wait for its return and log response
	log.Printf("Supply: %s", sp.Init(conf.RestfulEndpoint, conf.Port, conf.SSLPort, conf.SSLCert, conf.SSLKey))

	<-finish
}

package supply

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/tarancss/supply/lib/metrics"
	"github.com/tarancss/supply/lib/store"
)

// Errors returned to client requests.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNoUser     = errors.New("username and password are required")
)

// Response defines the data structure returned to the client when there is no other payload to reply.
type Response struct {
	Body  string `json:"body,omitempty"`
	Error string `json:"error,omitempty"`
}

// Login is the request body of the login endpoint. Any non-empty username and password are accepted.
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is replied by the login endpoint.
type TokenResponse struct {
	Token string `json:"token"`
}

// reply writes v as JSON with the given status, or the error with status 400 if err is not nil, and logs the request.
func reply(rw http.ResponseWriter, r *http.Request, status int, v interface{}, err error) {
	if err != nil {
		status = http.StatusBadRequest
		v = Response{Error: err.Error()}
	}

	log.Printf("httpreq from %v %s status:%d err:%v", r.RemoteAddr, r.RequestURI, status, err)
	metrics.HTTPRequest(r.Method, path(r), status)

	rw.Header().Set("Content-Type", "application/json;charset=utf8")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

// path returns the route template matched by r so metrics are not labelled with arbitrary paths.
func path(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}

	return r.URL.Path
}

// homeHandler just replies a welcome message to the client.
func (sp *Supply) homeHandler(rw http.ResponseWriter, r *http.Request) {
	reply(rw, r, http.StatusOK, Response{Body: "Hello, this is your circulating supply service!"}, nil)
}

// healthHandler replies ok while the service is up.
func (sp *Supply) healthHandler(rw http.ResponseWriter, r *http.Request) {
	reply(rw, r, http.StatusOK, Response{Body: "ok"}, nil)
}

// authenticate replies 401, with no body, to requests without a valid bearer token before they reach next.
func (sp *Supply) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		sub, err := sp.iss.Verify(bearer(r))
		if err != nil {
			log.Printf("httpreq from %v %s status:%d err:%v", r.RemoteAddr, r.RequestURI, http.StatusUnauthorized, err)
			metrics.HTTPRequest(r.Method, path(r), http.StatusUnauthorized)

			rw.Header().Set("WWW-Authenticate", "Bearer")
			rw.WriteHeader(http.StatusUnauthorized)

			return
		}

		log.Debugf("httpreq from %v %s authenticated as %q", r.RemoteAddr, r.RequestURI, sub)
		next.ServeHTTP(rw, r)
	})
}

// bearer returns the token in the Authorization header, empty if there is none.
func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")

	const prefix = "bearer "
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(h[len(prefix):])
}

// calculateHandler recomputes the supply, saves it and replies the saved snapshot.
func (sp *Supply) calculateHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var s store.Snapshot

	defer func() {
		reply(rw, r, http.StatusOK, s, err)
	}()

	s, err = sp.agg.Recompute(r.Context())
}

// infoHandler replies the last saved snapshot.
func (sp *Supply) infoHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var s store.Snapshot

	defer func() {
		reply(rw, r, http.StatusOK, s, err)
	}()

	s, err = sp.agg.Info(r.Context())
}

// loginHandler replies a bearer token for the username requested.
func (sp *Supply) loginHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res TokenResponse

	defer func() {
		reply(rw, r, http.StatusOK, res, err)
	}()

	var l Login
	if err = json.NewDecoder(r.Body).Decode(&l); err != nil {
		log.Printf("Error decoding login request from %v", r.RemoteAddr)

		err = ErrBadRequest

		return
	}

	if l.Username == "" || l.Password == "" {
		err = ErrNoUser

		return
	}

	res.Token, err = sp.iss.Issue(l.Username)
}

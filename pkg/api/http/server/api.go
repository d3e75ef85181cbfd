package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"

	"github.com/mapgrid/lakeproc/pkg/api"
	"github.com/mapgrid/lakeproc/pkg/structs"
)

const (
	wait = 30 * time.Second
)

type Server struct {
	addr       string
	debug      bool
	downloads  http.Handler
	svc        api.API
	exit       chan os.Signal
	httpserver *http.Server
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.Health).Methods(http.MethodGet)
	router.HandleFunc("/processes", s.Processes).Methods(http.MethodGet)
	router.HandleFunc("/processes/{processID}/execution", s.Execute).Methods(http.MethodPost)
	router.HandleFunc("/jobs", s.Jobs).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{jobID}", s.Job).Methods(http.MethodGet, http.MethodDelete)
	router.HandleFunc("/jobs/{jobID}/results", s.Results).Methods(http.MethodGet)
	if s.downloads != nil {
		router.PathPrefix("/results/").Handler(s.downloads).Methods(http.MethodGet)
	}
	return router
}

func (s *Server) ServeForever(svc api.API) error {
	s.svc = svc

	router := s.routes()
	if s.debug {
		log.Println("Debug enabled, adding per-request logging middleware")
		router.Use(loggingMiddleware)
	}

	s.httpserver = &http.Server{
		Handler:      router,
		Addr:         s.addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		log.Println("Listening on", s.httpserver.Addr)
		if err := s.httpserver.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	signal.Notify(s.exit, os.Interrupt)
	defer s.Close()
	<-s.exit

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	s.httpserver.Shutdown(ctx)
	os.Exit(0)
	return nil
}

// Execute accepts a job for the given process. The reply is the
// accepted StatusInfo; execution happens elsewhere.
func (s *Server) Execute(w http.ResponseWriter, r *http.Request) {
	args := map[string]interface{}{}
	err := unmarshalJson(w, r, &args)
	if err != nil {
		return
	}

	info, err := s.svc.Submit(mux.Vars(r)["processID"], args)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}
	addLinks(info)

	w.Header().Set("Location", "/jobs/"+info.JobID)
	w.WriteHeader(http.StatusCreated)
	err = json.NewEncoder(w).Encode(info)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Processes lists the registered process ids.
func (s *Server) Processes(w http.ResponseWriter, r *http.Request) {
	err := json.NewEncoder(w).Encode(map[string][]string{"processes": s.svc.Processes()})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Jobs lists in-flight jobs matching the query.
func (s *Server) Jobs(w http.ResponseWriter, r *http.Request) {
	q := &structs.Query{}
	err := unmarshalQuery(w, r, q)
	if err != nil {
		return
	}

	items, err := s.svc.Jobs(q)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}
	for _, i := range items {
		addLinks(i)
	}
	if s.debug {
		log.Println(r.URL, "returned", len(items), "items")
	}

	err = json.NewEncoder(w).Encode(map[string]interface{}{"jobs": items})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Job reports (GET) or dismisses (DELETE) a single job.
func (s *Server) Job(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobID"]

	var info *structs.StatusInfo
	var err error
	switch r.Method {
	case http.MethodGet:
		info, err = s.svc.Status(jobID)
	case http.MethodDelete:
		info, err = s.svc.Dismiss(jobID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}
	addLinks(info)

	err = json.NewEncoder(w).Encode(info)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Results returns the result reference of a successful job.
func (s *Server) Results(w http.ResponseWriter, r *http.Request) {
	ref, err := s.svc.Results(mux.Vars(r)["jobID"])
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	err = json.NewEncoder(w).Encode(map[string]*structs.ResultRef{"output_dataset": ref})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) Close() error {
	s.exit <- os.Interrupt
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// addLinks attaches the standard links; the results link only exists
// once there are results to fetch.
func addLinks(info *structs.StatusInfo) {
	self := "/jobs/" + info.JobID
	info.Links = []structs.Link{
		{Href: self, Rel: "self", Type: "application/json"},
	}
	if info.Status == structs.SUCCESSFUL {
		info.Links = append(info.Links, structs.Link{
			Href: self + "/results", Rel: "results", Type: "application/json",
		})
	}
}

// NewServer returns a http server on the given address. If downloads is
// non-nil it is mounted under /results/ to serve signed result files.
func NewServer(addr string, downloads http.Handler, debug bool) *Server {
	return &Server{
		addr:      addr,
		debug:     debug,
		downloads: downloads,
		exit:      make(chan os.Signal, 1),
	}
}

package stats

import (
	"net/http"
	_ "net/http/pprof"
)

// StartHttpPProf serves the pprof handlers on bind in the background.
func StartHttpPProf(bind string) {
	go func() {
		log.Printf("serving pprof on http://%s/debug/pprof/", bind)
		if err := http.ListenAndServe(bind, nil); err != nil {
			log.Errorf("pprof server: %s", err)
		}
	}()
}

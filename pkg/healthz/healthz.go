package healthz

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apiserver/pkg/server/healthz"
)

var (
	mutex    sync.RWMutex
	checkers []healthz.HealthChecker
)

// RegisterChecker adds probes evaluated on every healthz request.
// Registration happens during wiring, before the server starts.
func RegisterChecker(checks ...healthz.HealthChecker) {
	mutex.Lock()
	defer mutex.Unlock()
	checkers = append(checkers, checks...)
}

// Handler runs every registered check. Any failure turns the probe into a
// 503 with the aggregated reasons; ?verbose lists the per-check outcomes.
func Handler(w http.ResponseWriter, req *http.Request) {
	mutex.RLock()
	checks := checkers
	mutex.RUnlock()

	var report strings.Builder
	var errs []error
	for _, checker := range checks {
		if err := checker.Check(req); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", checker.Name(), err))
			fmt.Fprintf(&report, "[-]%s failed\n", checker.Name())
			continue
		}
		fmt.Fprintf(&report, "[+]%s ok\n", checker.Name())
	}

	if len(errs) > 0 {
		http.Error(w, report.String()+utilerrors.NewAggregate(errs).Error(), http.StatusServiceUnavailable)
		return
	}

	if req.URL.Query().Has("verbose") {
		fmt.Fprint(w, report.String())
	}
	fmt.Fprint(w, "ok")
}

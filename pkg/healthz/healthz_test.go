package healthz

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onsi/gomega"
	k8shealthz "k8s.io/apiserver/pkg/server/healthz"
)

func TestHandler(t *testing.T) {
	g := gomega.NewWithT(t)

	RegisterChecker(k8shealthz.PingHealthz)

	rec := httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	g.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(gomega.Equal("ok"))

	rec = httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose", nil))
	g.Expect(rec.Body.String()).To(gomega.ContainSubstring("[+]ping ok"))

	RegisterChecker(k8shealthz.NamedCheck("providers", func(*http.Request) error {
		return errors.New("no providers registered")
	}))
	rec = httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	g.Expect(rec.Code).To(gomega.Equal(http.StatusServiceUnavailable))
	g.Expect(rec.Body.String()).To(gomega.ContainSubstring("[-]providers failed"))
	g.Expect(rec.Body.String()).To(gomega.ContainSubstring("providers: no providers registered"))
}

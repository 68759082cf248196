package local

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/provider"
)

func TestLocal(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "local provider")
}

var fakeOllama = "http://127.0.0.1:11434"

func newTestLocal() *Local {
	opts := NewOptions()
	opts.OllamaURL = fakeOllama
	l := New(opts)
	httpmock.ActivateNonDefault(l.cli)
	return l
}

var _ = ginkgo.AfterEach(func() {
	httpmock.DeactivateAndReset()
})

var _ = ginkgo.It("HealthCheck healthy", func() {
	l := newTestLocal()
	httpmock.RegisterResponder(http.MethodGet, fakeOllama+"/api/tags",
		httpmock.NewStringResponder(200, `{"models":[]}`))

	health := l.HealthCheck(context.Background())
	gomega.Expect(health.IsHealthy).To(gomega.BeTrue())
	gomega.Expect(health.Provider).To(gomega.Equal(consts.ProviderLocal))
	gomega.Expect(health.AvailableGpus).To(gomega.HaveLen(1))
	gomega.Expect(health.AvailableGpus[0].Available).To(gomega.Equal(1))
})

var _ = ginkgo.It("HealthCheck ollama down", func() {
	l := newTestLocal()
	httpmock.RegisterResponder(http.MethodGet, fakeOllama+"/api/tags",
		httpmock.NewStringResponder(500, "boom"))

	health := l.HealthCheck(context.Background())
	gomega.Expect(health.IsHealthy).To(gomega.BeFalse())
	gomega.Expect(health.Error).To(gomega.ContainSubstring("500"))
})

var _ = ginkgo.It("HealthCheck disabled", func() {
	l := newTestLocal()
	l.opts.Enable = false

	health := l.HealthCheck(context.Background())
	gomega.Expect(health.IsHealthy).To(gomega.BeFalse())
	gomega.Expect(health.Error).To(gomega.Equal("provider disabled"))
})

var _ = ginkgo.It("Provision rejects non-entry tiers", func() {
	l := newTestLocal()
	result := l.Provision(context.Background(), &provider.ProvisionRequest{Tier: "beast", SessionID: "pump_1"})
	gomega.Expect(result.Success).To(gomega.BeFalse())
	gomega.Expect(result.Error).To(gomega.ContainSubstring("starter"))
})

var _ = ginkgo.It("Provision claims the single slot", func() {
	l := newTestLocal()

	first := l.Provision(context.Background(), &provider.ProvisionRequest{Tier: "starter", SessionID: "pump_1"})
	gomega.Expect(first.Success).To(gomega.BeTrue())
	gomega.Expect(first.Instance.ProviderInstanceID).To(gomega.Equal("local_pump_1"))
	gomega.Expect(first.Instance.Status).To(gomega.Equal(consts.InstanceRunning))

	second := l.Provision(context.Background(), &provider.ProvisionRequest{Tier: "starter", SessionID: "pump_2"})
	gomega.Expect(second.Success).To(gomega.BeFalse())
	gomega.Expect(second.Error).To(gomega.ContainSubstring("in use"))

	offerings := l.GetAvailability(context.Background())
	gomega.Expect(offerings[0].Available).To(gomega.Equal(0))

	gomega.Expect(l.Terminate(context.Background(), "local_pump_1")).To(gomega.BeTrue())
	offerings = l.GetAvailability(context.Background())
	gomega.Expect(offerings[0].Available).To(gomega.Equal(1))
})

var _ = ginkgo.It("Provision preloads the requested model", func() {
	l := newTestLocal()

	var pulled string
	httpmock.RegisterResponder(http.MethodPost, fakeOllama+"/api/pull",
		func(req *http.Request) (*http.Response, error) {
			var body map[string]string
			gomega.Expect(json.NewDecoder(req.Body).Decode(&body)).To(gomega.Succeed())
			pulled = body["name"]
			return httpmock.NewStringResponse(200, "{}"), nil
		})

	result := l.Provision(context.Background(), &provider.ProvisionRequest{
		Tier: "starter", SessionID: "pump_1", ModelID: "llama-3-70b",
	})
	gomega.Expect(result.Success).To(gomega.BeTrue())
	gomega.Expect(pulled).To(gomega.Equal("llama3:70b"))
})

var _ = ginkgo.It("Stop never pauses, Terminate frees", func() {
	l := newTestLocal()
	result := l.Provision(context.Background(), &provider.ProvisionRequest{Tier: "starter", SessionID: "pump_1"})
	gomega.Expect(result.Success).To(gomega.BeTrue())

	gomega.Expect(l.Stop(context.Background(), "local_pump_1")).To(gomega.BeFalse())

	instance, err := l.GetStatus(context.Background(), "local_pump_1")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(instance).NotTo(gomega.BeNil())

	gomega.Expect(l.Terminate(context.Background(), "local_pump_1")).To(gomega.BeTrue())
	gomega.Expect(l.Terminate(context.Background(), "local_pump_1")).To(gomega.BeFalse())

	instance, err = l.GetStatus(context.Background(), "local_pump_1")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(instance).To(gomega.BeNil())
})

var _ = ginkgo.It("GetStatus unknown instance", func() {
	l := newTestLocal()
	instance, err := l.GetStatus(context.Background(), "local_pump_nope")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(instance).To(gomega.BeNil())
})

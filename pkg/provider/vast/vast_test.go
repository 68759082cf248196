package vast

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/provider"
)

func TestVast(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "vast provider")
}

var fakeEndpoint = "http://vast-api/api/v0"

func newTestVast() *Vast {
	opts := NewOptions()
	opts.Enable = true
	opts.APIKey = "vast-test-key"
	opts.Endpoint = fakeEndpoint
	v := New(opts)
	httpmock.ActivateNonDefault(v.cli)
	return v
}

var _ = ginkgo.AfterEach(func() {
	httpmock.DeactivateAndReset()
})

const offersJSON = `{"offers":[
	{"id":101,"gpu_name":"RTX 4090","num_gpus":1,"gpu_ram":24576,"dph_total":0.40,"reliability":0.99,"geolocation":"US","verified":true},
	{"id":102,"gpu_name":"RTX 4090","num_gpus":2,"gpu_ram":24576,"dph_total":0.55,"reliability":0.98,"geolocation":"EU","verified":true},
	{"id":103,"gpu_name":"H100 80GB","num_gpus":1,"gpu_ram":81920,"dph_total":2.40,"reliability":0.99,"geolocation":"US","verified":true}
]}`

func mockOffers(body string) {
	httpmock.RegisterResponder(http.MethodGet, `=~^http://vast-api/api/v0/bundles`,
		httpmock.NewStringResponder(200, body))
}

var _ = ginkgo.It("HealthCheck aggregates offers per GPU", func() {
	v := newTestVast()
	mockOffers(offersJSON)

	health := v.HealthCheck(context.Background())
	gomega.Expect(health.IsHealthy).To(gomega.BeTrue())
	gomega.Expect(health.Provider).To(gomega.Equal(consts.ProviderVast))
	gomega.Expect(health.AvailableGpus).To(gomega.HaveLen(2))
	gomega.Expect(health.AvailableGpus[0].Type).To(gomega.Equal("RTX 4090"))
	gomega.Expect(health.AvailableGpus[0].Available).To(gomega.Equal(3))
	// cheapest offer wins the price slot
	gomega.Expect(health.AvailableGpus[0].PricePerHour).To(gomega.Equal(0.40))
})

var _ = ginkgo.It("HealthCheck api down", func() {
	v := newTestVast()
	httpmock.RegisterResponder(http.MethodGet, `=~^http://vast-api/api/v0/bundles`,
		httpmock.NewStringResponder(503, "unavailable"))

	health := v.HealthCheck(context.Background())
	gomega.Expect(health.IsHealthy).To(gomega.BeFalse())
	gomega.Expect(health.Error).To(gomega.ContainSubstring("503"))
})

var _ = ginkgo.It("Provision accepts the cheapest matching offer", func() {
	v := newTestVast()
	mockOffers(offersJSON)
	httpmock.RegisterResponder(http.MethodPut, fakeEndpoint+"/asks/101/",
		httpmock.NewStringResponder(200, `{"success":true,"new_contract":555}`))
	httpmock.RegisterResponder(http.MethodGet, fakeEndpoint+"/instances/",
		httpmock.NewStringResponder(200, `{"instances":[
			{"id":555,"actual_status":"loading","gpu_name":"RTX 4090","num_gpus":1,"dph_total":0.40,"label":"pump-pump_1"}
		]}`))

	result := v.Provision(context.Background(), &provider.ProvisionRequest{
		Tier: "starter", SessionID: "pump_1",
	})
	gomega.Expect(result.Success).To(gomega.BeTrue())
	gomega.Expect(result.Instance.ProviderInstanceID).To(gomega.Equal("555"))
	gomega.Expect(result.Instance.Status).To(gomega.Equal(consts.InstanceProvisioning))
	gomega.Expect(result.Instance.PricePerHour).To(gomega.Equal(0.40))
})

var _ = ginkgo.It("Provision with no matching offer is a no-capacity outcome", func() {
	v := newTestVast()
	mockOffers(`{"offers":[]}`)

	result := v.Provision(context.Background(), &provider.ProvisionRequest{
		Tier: "starter", SessionID: "pump_1",
	})
	gomega.Expect(result.Success).To(gomega.BeFalse())
	gomega.Expect(result.Error).To(gomega.ContainSubstring("no available GPUs"))
})

var _ = ginkgo.It("Provision honors the caller's price ceiling", func() {
	v := newTestVast()
	mockOffers(offersJSON)

	result := v.Provision(context.Background(), &provider.ProvisionRequest{
		Tier: "starter", SessionID: "pump_1", MaxPricePerHour: 0.30,
	})
	gomega.Expect(result.Success).To(gomega.BeFalse())
})

var _ = ginkgo.It("GetStatus maps actual_status", func() {
	v := newTestVast()
	httpmock.RegisterResponder(http.MethodGet, fakeEndpoint+"/instances/",
		httpmock.NewStringResponder(200, `{"instances":[
			{"id":555,"actual_status":"running","ssh_host":"ssh5.vast.ai","ssh_port":2222,
			 "jupyter_url":"https://jupyter.vast.ai/555","gpu_name":"RTX 4090","num_gpus":1,"dph_total":0.40}
		]}`))

	inst, err := v.GetStatus(context.Background(), "555")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(inst.Status).To(gomega.Equal(consts.InstanceRunning))
	gomega.Expect(inst.SSHHost).To(gomega.Equal("ssh5.vast.ai"))
	gomega.Expect(inst.AccessURL).To(gomega.Equal("https://jupyter.vast.ai/555"))
	gomega.Expect(inst.ReadyAt).NotTo(gomega.BeNil())
})

var _ = ginkgo.It("GetStatus unknown instance", func() {
	v := newTestVast()
	httpmock.RegisterResponder(http.MethodGet, fakeEndpoint+"/instances/",
		httpmock.NewStringResponder(200, `{"instances":[]}`))

	inst, err := v.GetStatus(context.Background(), "555")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(inst).To(gomega.BeNil())
})

var _ = ginkgo.It("Stop, Start and Terminate drive instance state", func() {
	v := newTestVast()
	httpmock.RegisterResponder(http.MethodPut, fakeEndpoint+"/instances/555/",
		httpmock.NewStringResponder(200, `{"success":true}`))
	httpmock.RegisterResponder(http.MethodDelete, fakeEndpoint+"/instances/555/",
		httpmock.NewStringResponder(200, `{"success":true}`))

	gomega.Expect(v.Stop(context.Background(), "555")).To(gomega.BeTrue())
	gomega.Expect(v.Start(context.Background(), "555")).To(gomega.BeTrue())
	gomega.Expect(v.Terminate(context.Background(), "555")).To(gomega.BeTrue())
})

var _ = ginkgo.It("GetMetrics is always nil", func() {
	v := newTestVast()
	gomega.Expect(v.GetMetrics(context.Background(), "555")).To(gomega.BeNil())
})

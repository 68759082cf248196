package runpod

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

func TestRunPod(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "runpod provider")
}

var fakeEndpoint = "https://api.runpod.io/graphql"

func newTestRunPod() *RunPod {
	opts := NewOptions()
	opts.Enable = true
	opts.APIKey = "rp-test-key"
	opts.Endpoint = fakeEndpoint
	r := New(opts)
	httpmock.ActivateNonDefault(r.cli)
	return r
}

var _ = ginkgo.AfterEach(func() {
	httpmock.DeactivateAndReset()
})

var _ = ginkgo.It("HealthCheck healthy", func() {
	r := newTestRunPod()
	httpmock.RegisterResponder(http.MethodPost, fakeEndpoint,
		httpmock.NewStringResponder(200, `{"data":{"myself":{"pods":[]}}}`))

	health := r.HealthCheck(context.Background())
	gomega.Expect(health.IsHealthy).To(gomega.BeTrue())
	gomega.Expect(health.Provider).To(gomega.Equal(consts.ProviderRunPod))
	gomega.Expect(len(health.AvailableGpus)).To(gomega.Equal(len(gpuPricing)))
})

var _ = ginkgo.It("HealthCheck unauthorized", func() {
	r := newTestRunPod()
	httpmock.RegisterResponder(http.MethodPost, fakeEndpoint,
		httpmock.NewStringResponder(401, `{"error":"unauthorized"}`))

	health := r.HealthCheck(context.Background())
	gomega.Expect(health.IsHealthy).To(gomega.BeFalse())
	gomega.Expect(health.Error).To(gomega.ContainSubstring("401"))
})

var _ = ginkgo.It("HealthCheck graphql error", func() {
	r := newTestRunPod()
	httpmock.RegisterResponder(http.MethodPost, fakeEndpoint,
		httpmock.NewStringResponder(200, `{"errors":[{"message":"something broke"}]}`))

	health := r.HealthCheck(context.Background())
	gomega.Expect(health.IsHealthy).To(gomega.BeFalse())
	gomega.Expect(health.Error).To(gomega.ContainSubstring("something broke"))
})

var _ = ginkgo.It("HealthCheck disabled", func() {
	r := New(NewOptions())
	health := r.HealthCheck(context.Background())
	gomega.Expect(health.IsHealthy).To(gomega.BeFalse())
	gomega.Expect(health.Error).To(gomega.Equal("provider disabled"))
})

var _ = ginkgo.It("Provision deploys a pod named after the session", func() {
	r := newTestRunPod()
	httpmock.RegisterResponder(http.MethodPost, fakeEndpoint,
		httpmock.NewStringResponder(200, `{"data":{"podFindAndDeployOnDemand":{
			"id":"pod-abc","name":"pump-pump_1","desiredStatus":"RUNNING",
			"machine":{"gpuDisplayName":"RTX 4090"},"costPerHr":"0.44"}}}`))

	result := r.Provision(context.Background(), &provider.ProvisionRequest{
		Tier: "starter", SessionID: "pump_1",
	})
	gomega.Expect(result.Success).To(gomega.BeTrue())
	gomega.Expect(result.Instance.ProviderInstanceID).To(gomega.Equal("pod-abc"))
	gomega.Expect(result.Instance.GpuType).To(gomega.Equal("RTX 4090"))
	gomega.Expect(result.Instance.PricePerHour).To(gomega.Equal(0.44))
	// pods come up asynchronously
	gomega.Expect(result.Instance.Status).To(gomega.Equal(consts.InstanceProvisioning))
	gomega.Expect(result.EstimatedReadySeconds).To(gomega.Equal(estimatedReadySeconds))
})

var _ = ginkgo.It("Provision surfaces backend refusals", func() {
	r := newTestRunPod()
	httpmock.RegisterResponder(http.MethodPost, fakeEndpoint,
		httpmock.NewStringResponder(200, `{"errors":[{"message":"no instances available"}]}`))

	result := r.Provision(context.Background(), &provider.ProvisionRequest{
		Tier: "starter", SessionID: "pump_1",
	})
	gomega.Expect(result.Success).To(gomega.BeFalse())
	gomega.Expect(result.Error).To(gomega.ContainSubstring("no instances available"))
})

var _ = ginkgo.It("GetStatus maps the backend enum", func() {
	r := newTestRunPod()
	httpmock.RegisterResponder(http.MethodPost, fakeEndpoint,
		httpmock.NewStringResponder(200, `{"data":{"pod":{
			"id":"pod-abc","desiredStatus":"RUNNING",
			"machine":{"gpuDisplayName":"RTX 4090"},
			"runtime":{"ports":[
				{"ip":"1.2.3.4","publicPort":10022,"privatePort":22},
				{"ip":"1.2.3.4","publicPort":18888,"privatePort":8888}
			]},
			"costPerHr":"0.44"}}}`))

	instance, err := r.GetStatus(context.Background(), "pod-abc")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(instance.Status).To(gomega.Equal(consts.InstanceRunning))
	gomega.Expect(instance.SSHHost).To(gomega.Equal("1.2.3.4"))
	gomega.Expect(instance.SSHPort).To(gomega.Equal(10022))
	gomega.Expect(instance.AccessURL).To(gomega.Equal("http://1.2.3.4:18888"))
})

var _ = ginkgo.It("GetStatus without runtime is still provisioning", func() {
	r := newTestRunPod()
	httpmock.RegisterResponder(http.MethodPost, fakeEndpoint,
		httpmock.NewStringResponder(200, `{"data":{"pod":{
			"id":"pod-abc","desiredStatus":"RUNNING",
			"machine":{"gpuDisplayName":"RTX 4090"},"costPerHr":"0.44"}}}`))

	instance, err := r.GetStatus(context.Background(), "pod-abc")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(instance.Status).To(gomega.Equal(consts.InstanceProvisioning))
	gomega.Expect(instance.ReadyAt).To(gomega.BeNil())
})

var _ = ginkgo.It("GetStatus unknown pod", func() {
	r := newTestRunPod()
	httpmock.RegisterResponder(http.MethodPost, fakeEndpoint,
		httpmock.NewStringResponder(200, `{"data":{"pod":null}}`))

	instance, err := r.GetStatus(context.Background(), "pod-gone")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(instance).To(gomega.BeNil())
})

var _ = ginkgo.It("Stop and Terminate report success", func() {
	r := newTestRunPod()
	httpmock.RegisterResponder(http.MethodPost, fakeEndpoint,
		httpmock.NewStringResponder(200, `{"data":{"podStop":{"id":"pod-abc"}}}`))

	gomega.Expect(r.Stop(context.Background(), "pod-abc")).To(gomega.BeTrue())
	gomega.Expect(r.Terminate(context.Background(), "pod-abc")).To(gomega.BeTrue())
})

var _ = ginkgo.It("GetMetrics reports only what the backend exposes", func() {
	r := newTestRunPod()
	httpmock.RegisterResponder(http.MethodPost, fakeEndpoint,
		httpmock.NewStringResponder(200, `{"data":{"pod":{
			"runtime":{"gpuUtilPercent":87.5,"memoryUtilPercent":54.0}}}}`))

	sample := r.GetMetrics(context.Background(), "pod-abc")
	gomega.Expect(sample).NotTo(gomega.BeNil())
	gomega.Expect(sample.GpuUtilization).To(gomega.Equal(87.5))
	gomega.Expect(sample.MemoryUsed).To(gomega.Equal(54.0))
	gomega.Expect(sample.Temperature).To(gomega.BeZero())
	gomega.Expect(sample.PowerDraw).To(gomega.BeZero())
})

package selector

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sneakyfree/sizzle/pkg/consts"
	"github.com/sneakyfree/sizzle/pkg/provider"
	"github.com/sneakyfree/sizzle/pkg/provider/fake"
	"github.com/sneakyfree/sizzle/pkg/registry"
)

func TestSelector(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Selector Suite")
}

func newFake(ctrl *gomock.Controller, slug string, health *provider.Health, caps *provider.Capabilities) *fake.FakeProvider {
	p := fake.NewFakeProvider(ctrl)
	p.EXPECT().Slug().Return(slug).AnyTimes()
	p.EXPECT().Name().Return(slug).AnyTimes()
	if health != nil {
		health.Provider = slug
		p.EXPECT().HealthCheck(gomock.Any()).Return(health).AnyTimes()
	}
	if caps != nil {
		p.EXPECT().GetCapabilities(gomock.Any()).Return(caps).AnyTimes()
	}
	return p
}

var _ = Describe("Selector", func() {
	var (
		ctrl *gomock.Controller
		reg  *registry.Registry
		sel  *Selector
		ctx  = context.Background()
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		reg = registry.New(registry.NewOptions())
		sel = New(NewOptions(), reg)
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Describe("SelectBest", func() {
		It("should reject an unknown tier", func() {
			_, err := sel.SelectBest(ctx, &provider.ProvisionRequest{Tier: "mega"})
			Expect(err).To(HaveOccurred())
		})

		It("should fail when no provider is healthy", func() {
			reg.Register(newFake(ctrl, consts.ProviderRunPod,
				&provider.Health{IsHealthy: false}, nil))

			_, err := sel.SelectBest(ctx, &provider.ProvisionRequest{Tier: "starter"})
			Expect(err).To(MatchError(ErrNoProviders))
		})

		It("should fail when no offering matches the tier", func() {
			reg.Register(newFake(ctrl, consts.ProviderRunPod, &provider.Health{
				IsHealthy: true,
				AvailableGpus: []*provider.GpuOffering{
					{Type: "H100 80GB", Available: 4, PricePerHour: 3.2},
				},
			}, nil))

			_, err := sel.SelectBest(ctx, &provider.ProvisionRequest{Tier: "starter"})
			Expect(err).To(MatchError(ErrNoProviders))
		})

		It("should pick the cheapest matching offering", func() {
			reg.Register(newFake(ctrl, consts.ProviderRunPod, &provider.Health{
				IsHealthy: true,
				AvailableGpus: []*provider.GpuOffering{
					{Type: "RTX 4090", Available: 2, PricePerHour: 0.69},
					{Type: "RTX 5090", Available: 1, PricePerHour: 0.89},
				},
			}, nil))

			selection, err := sel.SelectBest(ctx, &provider.ProvisionRequest{Tier: "starter"})
			Expect(err).NotTo(HaveOccurred())
			Expect(selection.Provider.Slug()).To(Equal(consts.ProviderRunPod))
			Expect(selection.EstimatedPricePerHour).To(Equal(0.69))
			Expect(selection.Score).To(Equal(0.69))
		})

		It("should penalize latency", func() {
			reg.Register(newFake(ctrl, consts.ProviderRunPod, &provider.Health{
				IsHealthy: true,
				LatencyMs: 500,
				AvailableGpus: []*provider.GpuOffering{
					{Type: "RTX 4090", Available: 2, PricePerHour: 1.0},
				},
			}, nil))

			selection, err := sel.SelectBest(ctx, &provider.ProvisionRequest{Tier: "starter"})
			Expect(err).NotTo(HaveOccurred())
			Expect(selection.Score).To(BeNumerically("~", 1.5, 1e-9))
		})

		It("should give the local provider a bonus", func() {
			reg.Register(newFake(ctrl, consts.ProviderLocal, &provider.Health{
				IsHealthy: true,
				AvailableGpus: []*provider.GpuOffering{
					{Type: "RTX 5090", Available: 1, PricePerHour: 1.0},
				},
			}, nil))
			reg.Register(newFake(ctrl, consts.ProviderVast, &provider.Health{
				IsHealthy: true,
				AvailableGpus: []*provider.GpuOffering{
					{Type: "RTX 5090", Available: 3, PricePerHour: 0.9},
				},
			}, nil))

			selection, err := sel.SelectBest(ctx, &provider.ProvisionRequest{Tier: "starter"})
			Expect(err).NotTo(HaveOccurred())
			// 1.0 * 0.8 = 0.8 beats vast's 0.9
			Expect(selection.Provider.Slug()).To(Equal(consts.ProviderLocal))
		})

		It("should penalize providers without preloaded model support when a model is requested", func() {
			reg.Register(newFake(ctrl, consts.ProviderLocal, &provider.Health{
				IsHealthy: true,
				AvailableGpus: []*provider.GpuOffering{
					{Type: "RTX 5090", Available: 1, PricePerHour: 1.0},
				},
			}, &provider.Capabilities{SupportsPreloadedModels: true}))
			reg.Register(newFake(ctrl, consts.ProviderVast, &provider.Health{
				IsHealthy: true,
				AvailableGpus: []*provider.GpuOffering{
					{Type: "RTX 5090", Available: 3, PricePerHour: 0.7},
				},
			}, &provider.Capabilities{SupportsPreloadedModels: false}))

			selection, err := sel.SelectBest(ctx, &provider.ProvisionRequest{Tier: "starter", ModelID: "llama3:70b"})
			Expect(err).NotTo(HaveOccurred())
			// local 1.0*0.8=0.8 beats vast 0.7*1.2=0.84
			Expect(selection.Provider.Slug()).To(Equal(consts.ProviderLocal))
		})

		It("should honor the price ceiling", func() {
			reg.Register(newFake(ctrl, consts.ProviderVast, &provider.Health{
				IsHealthy: true,
				AvailableGpus: []*provider.GpuOffering{
					{Type: "RTX 4090", Available: 2, PricePerHour: 0.5},
					{Type: "RTX 5090", Available: 1, PricePerHour: 0.3},
				},
			}, nil))

			selection, err := sel.SelectBest(ctx, &provider.ProvisionRequest{Tier: "starter", MaxPricePerHour: 0.4})
			Expect(err).NotTo(HaveOccurred())
			Expect(selection.EstimatedPricePerHour).To(Equal(0.3))

			_, err = sel.SelectBest(ctx, &provider.ProvisionRequest{Tier: "starter", MaxPricePerHour: 0.2})
			Expect(err).To(MatchError(ErrNoProviders))
		})

		It("should break score ties by priority", func() {
			offering := []*provider.GpuOffering{
				{Type: "RTX 4090", Available: 1, PricePerHour: 0.5},
			}
			reg.Register(newFake(ctrl, consts.ProviderVast, &provider.Health{IsHealthy: true, AvailableGpus: offering}, nil))
			reg.Register(newFake(ctrl, consts.ProviderRunPod, &provider.Health{IsHealthy: true, AvailableGpus: offering}, nil))

			selection, err := sel.SelectBest(ctx, &provider.ProvisionRequest{Tier: "starter"})
			Expect(err).NotTo(HaveOccurred())
			Expect(selection.Provider.Slug()).To(Equal(consts.ProviderRunPod))
		})
	})

	Describe("Provision", func() {
		It("should bypass selection for a pinned provider", func() {
			p := newFake(ctrl, consts.ProviderVast, nil, nil)
			p.EXPECT().Provision(gomock.Any(), gomock.Any()).Return(&provider.ProvisionResult{Success: true})
			reg.Register(p)

			result, slug, err := sel.Provision(ctx, &provider.ProvisionRequest{Tier: "starter"}, consts.ProviderVast)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Success).To(BeTrue())
			Expect(slug).To(Equal(consts.ProviderVast))
		})

		It("should fail for an unknown pinned provider", func() {
			_, _, err := sel.Provision(ctx, &provider.ProvisionRequest{Tier: "starter"}, "lambda")
			Expect(err).To(HaveOccurred())
		})

		It("should fall back in priority order when the best provider refuses", func() {
			best := newFake(ctrl, consts.ProviderVast, &provider.Health{
				IsHealthy: true,
				AvailableGpus: []*provider.GpuOffering{
					{Type: "RTX 4090", Available: 1, PricePerHour: 0.2},
				},
			}, nil)
			best.EXPECT().Provision(gomock.Any(), gomock.Any()).
				Return(&provider.ProvisionResult{Success: false, Error: "out of stock"})
			reg.Register(best)

			second := newFake(ctrl, consts.ProviderRunPod, &provider.Health{IsHealthy: false}, nil)
			second.EXPECT().Provision(gomock.Any(), gomock.Any()).Return(&provider.ProvisionResult{Success: true})
			reg.Register(second)

			result, slug, err := sel.Provision(ctx, &provider.ProvisionRequest{Tier: "starter"}, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Success).To(BeTrue())
			Expect(slug).To(Equal(consts.ProviderRunPod))
		})

		It("should report no capacity when everyone refuses", func() {
			p := newFake(ctrl, consts.ProviderRunPod, &provider.Health{IsHealthy: false}, nil)
			p.EXPECT().Provision(gomock.Any(), gomock.Any()).Return(&provider.ProvisionResult{Success: false})
			reg.Register(p)

			_, _, err := sel.Provision(ctx, &provider.ProvisionRequest{Tier: "starter"}, "")
			Expect(err).To(MatchError(ErrNoCapacity))
		})
	})

	Describe("GetTierPricing", func() {
		It("should list matching offerings cheapest first", func() {
			reg.Register(newFake(ctrl, consts.ProviderRunPod, &provider.Health{
				IsHealthy: true,
				AvailableGpus: []*provider.GpuOffering{
					{Type: "RTX 4090", Available: 3, PricePerHour: 0.69},
					{Type: "H100 80GB", Available: 1, PricePerHour: 3.2},
				},
			}, nil))
			reg.Register(newFake(ctrl, consts.ProviderVast, &provider.Health{
				IsHealthy: true,
				AvailableGpus: []*provider.GpuOffering{
					{Type: "RTX 5090", Available: 2, PricePerHour: 0.45},
				},
			}, nil))

			pricing, err := sel.GetTierPricing(ctx, "starter")
			Expect(err).NotTo(HaveOccurred())
			Expect(pricing).To(HaveLen(2))
			Expect(pricing[0].Provider).To(Equal(consts.ProviderVast))
			Expect(pricing[0].PricePerMinute).To(BeNumerically("~", 0.0075, 1e-9))
			Expect(pricing[1].Provider).To(Equal(consts.ProviderRunPod))
		})
	})
})

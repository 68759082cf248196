package balance

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBalance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Balance Suite")
}

var _ = Describe("MemoryStore", func() {
	var (
		store *MemoryStore
		ctx   = context.Background()
	)

	BeforeEach(func() {
		opts := NewOptions()
		opts.SignupFreeMinutes = 10
		opts.SignupCredits = 2.0
		store = NewMemoryStore(opts)
	})

	It("should seed a first-seen user with the signup grant", func() {
		b, err := store.Get(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(b.FreeMinutes).To(Equal(10))
		Expect(b.Credits).To(Equal(2.0))
	})

	It("should consume free minutes before credits", func() {
		d, err := store.Deduct(ctx, "alice", 12, 0.15)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.FreeMinutesUsed).To(Equal(10))
		Expect(d.CreditsCharged).To(BeNumerically("~", 0.3, 1e-9))
		Expect(d.Shortfall).To(BeZero())
		Expect(d.Balance.FreeMinutes).To(Equal(0))
		Expect(d.Balance.Credits).To(BeNumerically("~", 1.7, 1e-9))
	})

	It("should charge only credits once free minutes are gone", func() {
		// tier "starter" at $0.15/min, 0 free minutes, $2.00 credit,
		// 9 billed minutes leaves $0.65
		_, err := store.Deduct(ctx, "alice", 10, 0)
		Expect(err).NotTo(HaveOccurred())

		d, err := store.Deduct(ctx, "alice", 9, 0.15)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.FreeMinutesUsed).To(BeZero())
		Expect(d.CreditsCharged).To(BeNumerically("~", 1.35, 1e-9))
		Expect(d.Balance.Credits).To(BeNumerically("~", 0.65, 1e-9))
	})

	It("should clamp at zero and report the shortfall", func() {
		d, err := store.Deduct(ctx, "alice", 100, 0.15)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.FreeMinutesUsed).To(Equal(10))
		Expect(d.CreditsCharged).To(Equal(2.0))
		Expect(d.Shortfall).To(BeNumerically("~", 90*0.15-2.0, 1e-9))
		Expect(d.Balance.FreeMinutes).To(BeZero())
		Expect(d.Balance.Credits).To(BeZero())
	})

	It("should treat a zero-minute settlement as a no-op", func() {
		d, err := store.Deduct(ctx, "alice", 0, 0.15)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.FreeMinutesUsed).To(BeZero())
		Expect(d.CreditsCharged).To(BeZero())
	})

	It("should top up buckets", func() {
		b, err := store.AddCredits(ctx, "alice", 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Credits).To(Equal(7.0))

		b, err = store.GrantFreeMinutes(ctx, "alice", 30)
		Expect(err).NotTo(HaveOccurred())
		Expect(b.FreeMinutes).To(Equal(40))
	})

	It("should count affordable minutes across both buckets", func() {
		b, err := store.Get(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		// 10 free + floor(2.00/0.15)=13
		Expect(b.AffordableMinutes(0.15)).To(Equal(23))
		Expect(b.AffordableMinutes(0)).To(Equal(10))
	})
})

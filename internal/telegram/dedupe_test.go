package telegram

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTelegram(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Telegram Suite")
}

var _ = Describe("DedupeCache", func() {
	It("reports an update as seen only after the first delivery", func() {
		cache := NewDedupeCache(10)
		Expect(cache.Seen(42)).To(BeFalse())
		Expect(cache.Seen(42)).To(BeTrue())
		Expect(cache.Seen(43)).To(BeFalse())
	})

	It("evicts the oldest update once the cap is reached", func() {
		cache := NewDedupeCache(2)
		Expect(cache.Seen(1)).To(BeFalse())
		Expect(cache.Seen(2)).To(BeFalse())
		Expect(cache.Seen(3)).To(BeFalse())

		// 1 fell out, 2 and 3 are still remembered.
		Expect(cache.Seen(2)).To(BeTrue())
		Expect(cache.Seen(3)).To(BeTrue())
		Expect(cache.Seen(1)).To(BeFalse())
		Expect(cache.Len()).To(Equal(2))
	})

	It("defaults the capacity when given a non-positive one", func() {
		cache := NewDedupeCache(0)
		for i := int64(0); i < 1500; i++ {
			cache.Seen(i)
		}
		Expect(cache.Len()).To(Equal(1000))
	})
})
